package walker

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/samplesheet"
	"github.com/harrison/seqtarget/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefixes(runs []models.SampleRun) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.SampleRunPrefix
	}
	return out
}

func TestWalkMetadataConvention(t *testing.T) {
	root := testutil.BuildProject(t)
	log := &testutil.RecordingLogger{}

	runs, err := New(Metadata, log).Walk(root, models.Filter{})
	require.NoError(t, err)

	fc := func(sample, flowcell, run string) string {
		return filepath.Join(root, sample, flowcell, run)
	}
	assert.Equal(t, []string{
		fc(testutil.Sample101, testutil.FlowcellA, "P001_101_index3_TGACCA_L001"),
		fc(testutil.Sample101, testutil.FlowcellA, "P001_101_index3_TGACCA_L002"),
		fc(testutil.Sample101, testutil.FlowcellB, "P001_101_index3_TGACCA_L001"),
		fc(testutil.Sample102, testutil.FlowcellA, "P001_102_index6_ACAGTG_L002"),
		fc(testutil.Sample102, testutil.FlowcellB, "P001_102_index6_ACAGTG_L001"),
	}, prefixes(runs))

	first := runs[0]
	assert.Equal(t, testutil.Project, first.ProjectID)
	assert.Equal(t, testutil.Sample101, first.SampleID)
	assert.Equal(t, root, first.ProjectPrefix)
	assert.Equal(t, filepath.Join(root, testutil.Sample101), first.SamplePrefix)
	assert.Equal(t, testutil.FlowcellA, first.Flowcell)
	assert.Equal(t, "1", first.Lane)
	assert.Equal(t, testutil.Index101, first.Index)

	for _, r := range runs {
		assert.Equal(t, filepath.Join(r.ProjectPrefix, r.SampleID), r.SamplePrefix)
	}

	require.Len(t, log.Warnings, 1)
	assert.Contains(t, log.Warnings[0], "No sample information for sample 'P001_103_index9'")
}

func TestWalkOneRunPerRecord(t *testing.T) {
	root := t.TempDir()
	fcDir := filepath.Join(root, "S1", "130101_CC001CCCXX")
	testutil.WriteFile(t, filepath.Join(fcDir, samplesheet.FileName),
		"FCID,Lane,SampleID,SampleRef,Index,Description,Control,Recipe,Operator,SampleProject\n"+
			"CC001CCCXX,1,S1,hg19,AAAA,,N,R1,NN,A.B_11_22\n"+
			"CC001CCCXX,1,S1,hg19,AAAA,,N,R1,NN,A.B_11_22\n"+
			"CC001CCCXX,,S1,hg19,AAAA,,N,R1,NN,A.B_11_22\n")

	log := &testutil.RecordingLogger{}
	runs, err := New(Metadata, log).Walk(root, models.Filter{})
	require.NoError(t, err)

	// duplicates are kept, the row without a lane is not
	require.Len(t, runs, 2)
	assert.Equal(t, runs[0].SampleRunPrefix, runs[1].SampleRunPrefix)
	assert.Equal(t, "A.B_11_22", runs[0].ProjectID)
	require.Len(t, log.Warnings, 1)
	assert.Contains(t, log.Warnings[0], "lacks lane or index")
}

func TestWalkSampleFilter(t *testing.T) {
	root := testutil.BuildProject(t)

	all, err := New(Metadata, nil).Walk(root, models.Filter{})
	require.NoError(t, err)

	log := &testutil.RecordingLogger{}
	subset, err := New(Metadata, log).Walk(root, models.Filter{
		Samples: []string{testutil.Sample102, "P001_999_missing"},
	})
	require.NoError(t, err)
	require.Len(t, subset, 2)

	for _, r := range subset {
		assert.Equal(t, testutil.Sample102, r.SampleID)
		assert.Contains(t, all, r)
	}
	require.Len(t, log.Warnings, 1)
	assert.Contains(t, log.Warnings[0], "P001_999_missing")
}

func TestWalkFlowcellFilter(t *testing.T) {
	root := testutil.BuildProject(t)

	runs, err := New(Metadata, nil).Walk(root, models.Filter{Flowcells: []string{testutil.FlowcellA}})
	require.NoError(t, err)
	require.Len(t, runs, 3)

	for _, r := range runs {
		assert.Equal(t, testutil.FlowcellA, filepath.Base(r.FlowcellDir()))
		assert.NotContains(t, r.SampleRunPrefix, testutil.FlowcellB)
	}
}

func TestWalkIgnoresLaneFilter(t *testing.T) {
	root := testutil.BuildProject(t)

	runs, err := New(Metadata, nil).Walk(root, models.Filter{Lanes: []int{1}})
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestWalkMissingRoot(t *testing.T) {
	log := &testutil.RecordingLogger{}

	runs, err := New(Metadata, log).Walk(filepath.Join(t.TempDir(), "nope"), models.Filter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
	require.Len(t, log.Warnings, 1)
	assert.Contains(t, log.Warnings[0], "No such directory")
}

func TestWalkAmbiguousRunInfo(t *testing.T) {
	root := testutil.BuildProject(t)
	fcDir := filepath.Join(root, testutil.Sample103, "130101_DD001DDDXX")
	testutil.WriteFile(t, filepath.Join(fcDir, testutil.Sample103+"-a-config.yaml"), "[]\n")
	testutil.WriteFile(t, filepath.Join(fcDir, testutil.Sample103+"-b-config.yaml"), "[]\n")

	_, err := New(Metadata, nil).Walk(root, models.Filter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, samplesheet.ErrAmbiguousMetadata))
	assert.Contains(t, err.Error(), testutil.Sample103)
}

func TestWalkGenericConvention(t *testing.T) {
	root := testutil.BuildProject(t)

	runs, err := New(Generic, nil).Walk(root, models.Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 5)

	for _, r := range runs {
		assert.Equal(t, testutil.Project, r.ProjectID)
		assert.Empty(t, r.Lane)
		assert.Empty(t, r.Index)
		assert.True(t, strings.HasPrefix(filepath.Base(r.SampleRunPrefix), r.SampleID), r.SampleRunPrefix)
	}
	assert.Equal(t, filepath.Join(root, testutil.Sample103, testutil.FlowcellA, "P001_103_index9_CAGATC"),
		runs[4].SampleRunPrefix)
}

func TestWalkGenericFlowcellFilter(t *testing.T) {
	root := testutil.BuildProject(t)

	runs, err := New(Generic, nil).Walk(root, models.Filter{Flowcells: []string{testutil.FlowcellB}})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, testutil.FlowcellB, r.Flowcell)
	}
}

func TestParseConvention(t *testing.T) {
	tests := []struct {
		in      string
		want    Convention
		wantErr bool
	}{
		{in: "", want: Metadata},
		{in: "metadata", want: Metadata},
		{in: " Generic ", want: Generic},
		{in: "bcbio", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseConvention(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "metadata", Metadata.String())
	assert.Equal(t, "generic", Generic.String())
}
