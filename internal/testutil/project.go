// Package testutil builds on-disk project trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Names used by the fixture project
const (
	Project    = "J.Doe_00_01"
	Sample101  = "P001_101_index3"
	Sample102  = "P001_102_index6"
	Sample103  = "P001_103_index9"
	FlowcellA  = "120924_AC003CCCXX"
	FlowcellB  = "121015_BB002BBBXX"
	Index101   = "TGACCA"
	Index102   = "ACAGTG"
	SheetName  = "SampleSheet.csv"
	sheetHead  = "FCID,Lane,SampleID,SampleRef,Index,Description,Control,Recipe,Operator,SampleProject\n"
	runInfo101 = `details:
- flowcell_id: BB002BBBXX
  lane: 1
  genome_build: hg19
  multiplex:
  - name: P001_101_index3
    sequence: TGACCA
    sample_prj: J.Doe_00_01
`
)

// BuildProject creates the fixture project under t.TempDir() and returns
// the project directory:
//
//	J.Doe_00_01
//	|-- P001_101_index3
//	|   |-- 120924_AC003CCCXX   SampleSheet.csv, lanes 1 and 2
//	|   `-- 121015_BB002BBBXX   P001_101_index3-bcbb-config.yaml, lane 1
//	|-- P001_102_index6
//	|   |-- 120924_AC003CCCXX   SampleSheet.csv, lane 2
//	|   `-- 121015_BB002BBBXX   SampleSheet.csv, lane 1
//	`-- P001_103_index9
//	    |-- 120924_AC003CCCXX   read files only, no metadata
//	    `-- notes               not a flowcell
//
// Resolving with the metadata convention yields five sample runs.
func BuildProject(t testing.TB) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), Project)

	fc101A := filepath.Join(root, Sample101, FlowcellA)
	fc101B := filepath.Join(root, Sample101, FlowcellB)
	fc102A := filepath.Join(root, Sample102, FlowcellA)
	fc102B := filepath.Join(root, Sample102, FlowcellB)
	fc103A := filepath.Join(root, Sample103, FlowcellA)

	WriteFile(t, filepath.Join(fc101A, SheetName), sheetHead+
		"AC003CCCXX,1,P001_101_index3,hg19,TGACCA,J__Doe_00_01,N,R1,NN,J.Doe_00_01\n"+
		"AC003CCCXX,2,P001_101_index3,hg19,TGACCA,J__Doe_00_01,N,R1,NN,J.Doe_00_01\n")
	WriteReads(t, fc101A, Sample101+"_"+Index101+"_L001")
	WriteReads(t, fc101A, Sample101+"_"+Index101+"_L002")

	WriteFile(t, filepath.Join(fc101B, Sample101+"-bcbb-config.yaml"), runInfo101)
	WriteReads(t, fc101B, Sample101+"_"+Index101+"_L001")

	WriteFile(t, filepath.Join(fc102A, SheetName), "# comment line\n"+sheetHead+
		"AC003CCCXX,2,P001_102_index6,hg19,ACAGTG,J__Doe_00_01,N,R1,NN,J.Doe_00_01\n")
	WriteReads(t, fc102A, Sample102+"_"+Index102+"_L002")

	WriteFile(t, filepath.Join(fc102B, SheetName), sheetHead+
		"BB002BBBXX,1,P001_102_index6,hg19,ACAGTG,J__Doe_00_01,N,R1,NN,J.Doe_00_01\n")
	WriteReads(t, fc102B, Sample102+"_"+Index102+"_L001")

	WriteReads(t, fc103A, Sample103+"_CAGATC_L003")
	MkdirAll(t, filepath.Join(root, Sample103, "notes"))

	return root
}

// WriteReads creates an R1/R2 pair of empty gzipped-fastq names for prefix in dir.
func WriteReads(t testing.TB, dir, prefix string) {
	t.Helper()
	WriteFile(t, filepath.Join(dir, prefix+"_R1_001.fastq.gz"), "")
	WriteFile(t, filepath.Join(dir, prefix+"_R2_001.fastq.gz"), "")
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	MkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MkdirAll creates dir and its parents.
func MkdirAll(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
}
