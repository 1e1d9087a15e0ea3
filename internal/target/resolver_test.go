package target

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/samplesheet"
	"github.com/harrison/seqtarget/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAllConcreteScenario(t *testing.T) {
	root := testutil.BuildProject(t)

	runs, err := NewResolver(nil).ResolveAll(root, models.Filter{Samples: []string{testutil.Sample101}})
	require.NoError(t, err)
	require.Len(t, runs, 3)

	fcA := filepath.Join(root, testutil.Sample101, testutil.FlowcellA)
	assert.Equal(t, filepath.Join(fcA, "P001_101_index3_TGACCA_L001"), runs[0].SampleRunPrefix)
	assert.Equal(t, filepath.Join(fcA, "P001_101_index3_TGACCA_L002"), runs[1].SampleRunPrefix)
}

func TestResolveAllMakesPrefixesAbsolute(t *testing.T) {
	root := testutil.BuildProject(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(filepath.Dir(root)))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	runs, err := NewResolver(nil).ResolveAll(testutil.Project, models.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	for _, r := range runs {
		assert.True(t, filepath.IsAbs(r.SampleRunPrefix), r.SampleRunPrefix)
		assert.True(t, filepath.IsAbs(r.SamplePrefix), r.SamplePrefix)
	}
}

func TestResolveAllCountsOneRunPerRow(t *testing.T) {
	root := testutil.BuildProject(t)

	runs, err := NewResolver(nil).ResolveAll(root, models.Filter{})
	require.NoError(t, err)
	// sheet rows: 101/A 2, 101/B 1 (run-info), 102/A 1, 102/B 1; 103 has no metadata
	assert.Len(t, runs, 5)
	for _, r := range runs {
		assert.NotEqual(t, testutil.Sample103, r.SampleID)
	}
}

func TestResolveAllFlowcellFilterScenario(t *testing.T) {
	root := testutil.BuildProject(t)

	runs, err := NewResolver(nil).ResolveAll(root, models.Filter{Flowcells: []string{testutil.FlowcellA}})
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	for _, r := range runs {
		assert.Equal(t, testutil.FlowcellA, filepath.Base(filepath.Dir(r.SampleRunPrefix)))
	}
}

func TestResolveRejectsInvalidLanes(t *testing.T) {
	root := testutil.BuildProject(t)
	r := NewResolver(nil)

	_, err := r.ResolveAll(root, models.Filter{Lanes: []int{9}})
	assert.True(t, errors.Is(err, models.ErrInvalidLane))

	_, err = r.ResolveGeneric(root, models.Filter{Lanes: []int{0}})
	assert.True(t, errors.Is(err, models.ErrInvalidLane))
}

func TestResolveGeneric(t *testing.T) {
	root := testutil.BuildProject(t)

	runs, err := NewResolver(nil).ResolveGeneric(root, models.Filter{Samples: []string{testutil.Sample103}})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, filepath.Join(root, testutil.Sample103, testutil.FlowcellA, "P001_103_index9_CAGATC"),
		runs[0].SampleRunPrefix)
}

func TestResolveAllUsesInjectedFunc(t *testing.T) {
	var gotRoot string
	custom := func(root string, f models.Filter) ([]models.SampleRun, error) {
		gotRoot = root
		return []models.SampleRun{{SampleRunPrefix: "/custom/run"}}, nil
	}

	runs, err := NewResolver(nil, WithResolveFunc(custom)).ResolveAll("relative/project", models.Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "/custom/run", runs[0].SampleRunPrefix)
	assert.True(t, filepath.IsAbs(gotRoot))

	// a nil option keeps the default
	r := NewResolver(nil, WithResolveFunc(nil), nil)
	runs, err = r.ResolveAll(t.TempDir(), models.Filter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestResolveAllMemoize(t *testing.T) {
	root := testutil.BuildProject(t)
	sheet := filepath.Join(root, testutil.Sample101, testutil.FlowcellB, samplesheet.FileName)

	plain, err := NewResolver(nil).ResolveAll(root, models.Filter{})
	require.NoError(t, err)
	assert.NoFileExists(t, sheet)

	memo, err := NewResolver(nil, WithMemoize(true)).ResolveAll(root, models.Filter{})
	require.NoError(t, err)
	assert.FileExists(t, sheet)
	assert.Equal(t, plain, memo)
}

func TestFilterLanes(t *testing.T) {
	runs := []models.SampleRun{
		{SampleRunPrefix: "a", Lane: "1"},
		{SampleRunPrefix: "b", Lane: "2"},
		{SampleRunPrefix: "c"},
		{SampleRunPrefix: "d", Lane: "x"},
	}

	assert.Equal(t, runs, FilterLanes(runs, nil))

	kept := FilterLanes(runs, []int{2})
	require.Len(t, kept, 2)
	assert.Equal(t, "b", kept[0].SampleRunPrefix)
	assert.Equal(t, "c", kept[1].SampleRunPrefix)
}

func TestSamples(t *testing.T) {
	root := testutil.BuildProject(t)
	runs, err := NewResolver(nil).ResolveAll(root, models.Filter{})
	require.NoError(t, err)

	samples := Samples(runs)
	require.Len(t, samples, 2)
	assert.Equal(t, testutil.Sample101, samples[0].SampleID)
	assert.Equal(t, testutil.Sample102, samples[1].SampleID)
}

func TestRegistry(t *testing.T) {
	root := testutil.BuildProject(t)
	reg := DefaultRegistry(nil, false)
	assert.Equal(t, []string{"generic", "metadata"}, reg.Names())

	generic, err := reg.Lookup("Generic")
	require.NoError(t, err)
	runs, err := generic(root, models.Filter{})
	require.NoError(t, err)
	assert.Len(t, runs, 5)
	for _, r := range runs {
		assert.Empty(t, r.Lane)
	}

	_, err = reg.Lookup("bcbio")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownResolver))
	assert.Contains(t, err.Error(), "generic, metadata")

	reg.Register("fixed", func(string, models.Filter) ([]models.SampleRun, error) { return nil, nil })
	_, err = reg.Lookup("fixed")
	assert.NoError(t, err)
}
