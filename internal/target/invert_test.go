package target

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveNames(t *testing.T) {
	sample := models.NewSample("J.Doe_00_01", "/data/J.Doe_00_01", "P001_101_index3")
	run := models.SampleRun{
		Sample:          sample,
		SampleRunPrefix: "/data/J.Doe_00_01/P001_101_index3/120924_AC003CCCXX/P001_101_index3_TGACCA_L001",
	}

	assert.Equal(t, run.SampleRunPrefix+".sort.bam", DeriveRunName(run, ".sort", ".bam"))
	assert.Equal(t, "/data/J.Doe_00_01/P001_101_index3.sort.merge.bam", DeriveSampleName(sample, ".sort.merge", ".bam"))
	assert.Equal(t, run.SampleRunPrefix, DeriveRunName(run, "", ""))
}

func TestInvertName(t *testing.T) {
	tests := []struct {
		name, label, suffix, upstream string
		want                          string
		wantErr                       bool
	}{
		{name: "S1.sort.merge.bam", label: ".merge", suffix: ".bam", upstream: ".bam", want: "S1.sort.bam"},
		{name: "S1.merge_x.merge.bam", label: ".merge", suffix: ".bam", upstream: ".bam", want: "S1.merge_x.bam"},
		{name: "S1.dup.bam", label: ".dup", suffix: ".bam", upstream: ".sort.bam", want: "S1.sort.bam"},
		{name: "S1.vcf", label: "", suffix: ".vcf", upstream: ".bam", want: "S1.bam"},
		{name: "S1.bam", label: ".merge", suffix: ".bam", wantErr: true},
		{name: "S1.bam", label: "", suffix: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name+tt.label, func(t *testing.T) {
			got, err := InvertName(tt.name, tt.label, tt.suffix, tt.upstream)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrLabelNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvertRunLevelMergedScenario(t *testing.T) {
	root := testutil.BuildProject(t)
	r := NewResolver(nil)

	got, err := r.InvertRunLevel(TaskContext{
		Target:         filepath.Join(root, testutil.Sample101, "P001_101_index3.sort.merge.bam"),
		Label:          ".merge",
		Suffix:         ".bam",
		UpstreamSuffix: ".bam",
	})
	require.NoError(t, err)

	fcA := filepath.Join(root, testutil.Sample101, testutil.FlowcellA)
	fcB := filepath.Join(root, testutil.Sample101, testutil.FlowcellB)
	assert.Equal(t, []string{
		filepath.Join(fcA, "P001_101_index3_TGACCA_L001.sort.bam"),
		filepath.Join(fcA, "P001_101_index3_TGACCA_L002.sort.bam"),
		filepath.Join(fcB, "P001_101_index3_TGACCA_L001.sort.bam"),
	}, got)
}

func TestInvertRunLevelIsLeftInverse(t *testing.T) {
	root := testutil.BuildProject(t)
	r := NewResolver(nil)

	runs, err := r.ResolveAll(root, models.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, runs)

	for _, run := range runs {
		n := DeriveRunName(run, ".dup", ".bam")
		got, err := r.InvertRunLevel(TaskContext{
			Target:         n,
			Label:          ".dup",
			Suffix:         ".bam",
			UpstreamSuffix: ".sort.bam",
		})
		require.NoError(t, err, n)
		assert.Contains(t, got, DeriveRunName(run, "", ".sort.bam"), n)
		// only the run the file belongs to contributes
		assert.Len(t, got, 1, n)
	}
}

func TestInvertRunLevelDeduplicates(t *testing.T) {
	root := t.TempDir()
	fcDir := filepath.Join(root, "S1", "130101_CC001CCCXX")
	testutil.WriteFile(t, filepath.Join(fcDir, "SampleSheet.csv"),
		"FCID,Lane,SampleID,SampleRef,Index,Description,Control,Recipe,Operator,SampleProject\n"+
			"CC001CCCXX,1,S1,hg19,AAAA,A__B,N,R1,NN,A.B\n"+
			"CC001CCCXX,1,S1,hg19,AAAA,A__B,N,R1,NN,A.B\n"+
			"CC001CCCXX,2,S1,hg19,AAAA,A__B,N,R1,NN,A.B\n")

	got, err := NewResolver(nil).InvertRunLevel(TaskContext{
		Target:         filepath.Join(root, "S1", "S1.merge.bam"),
		Label:          ".merge",
		Suffix:         ".bam",
		UpstreamSuffix: ".bam",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(fcDir, "S1_AAAA_L001.bam"),
		filepath.Join(fcDir, "S1_AAAA_L002.bam"),
	}, got)
}

func TestInvertRunLevelNoRuns(t *testing.T) {
	root := testutil.BuildProject(t)
	log := &testutil.RecordingLogger{}

	got, err := NewResolver(log).InvertRunLevel(TaskContext{
		Target:         filepath.Join(root, testutil.Sample103, "P001_103_index9.merge.bam"),
		Label:          ".merge",
		Suffix:         ".bam",
		UpstreamSuffix: ".bam",
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NotEmpty(t, log.Warnings)
}

func TestInvertRunLevelLabelMissing(t *testing.T) {
	root := testutil.BuildProject(t)

	_, err := NewResolver(nil).InvertRunLevel(TaskContext{
		Target:         filepath.Join(root, testutil.Sample101, "P001_101_index3.sort.bam"),
		Label:          ".merge",
		Suffix:         ".bam",
		UpstreamSuffix: ".bam",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLabelNotFound))
}

func TestInvertRunLevelGenericResolver(t *testing.T) {
	root := testutil.BuildProject(t)
	reg := DefaultRegistry(nil, false)
	generic, err := reg.Lookup("generic")
	require.NoError(t, err)

	got, err := NewResolver(nil, WithResolveFunc(generic)).InvertRunLevel(TaskContext{
		Target:         filepath.Join(root, testutil.Sample103, "P001_103_index9.merge.bam"),
		Label:          ".merge",
		Suffix:         ".bam",
		UpstreamSuffix: ".bam",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, testutil.Sample103, testutil.FlowcellA, "P001_103_index9_CAGATC.bam"),
	}, got)
}

func TestInvertSampleLevel(t *testing.T) {
	root := testutil.BuildProject(t)
	r := NewResolver(nil)
	tc := TaskContext{
		Target:         filepath.Join(root, "project.vcf.tar.gz"),
		UpstreamLabels: ".sort.merge.dup",
		UpstreamSuffix: ".vcf",
	}

	got, err := r.InvertSampleLevel(tc, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, testutil.Sample101+".sort.merge.dup.vcf"),
		filepath.Join(root, testutil.Sample102+".sort.merge.dup.vcf"),
	}, got)

	got, err = r.InvertSampleLevel(tc, models.Filter{Samples: []string{testutil.Sample102}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, testutil.Sample102+".sort.merge.dup.vcf")}, got)

	// lane 2 exists only on flowcell A for both samples
	got, err = r.InvertSampleLevel(tc, models.Filter{Lanes: []int{2}, Flowcells: []string{testutil.FlowcellB}})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = r.InvertSampleLevel(tc, models.Filter{Lanes: []int{12}})
	assert.True(t, errors.Is(err, models.ErrInvalidLane))
}
