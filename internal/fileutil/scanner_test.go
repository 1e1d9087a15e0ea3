package fileutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFiles(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("test content"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	return names
}

func TestScanDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	// tmpDir/
	//   S1_R1_001.fastq.gz
	//   S1_R2_001.FASTQ.GZ
	//   S1.fq
	//   SampleSheet.csv
	//   reads/
	//     S2_1.fq.gz
	//     deeper/
	//       S3_1.fastq
	//   .hidden/
	//     S4_1.fastq
	//   nested/
	//     S5_1.fastq
	writeFiles(t, tmpDir, []string{
		"S1_R1_001.fastq.gz",
		"S1_R2_001.FASTQ.GZ",
		"S1.fq",
		"SampleSheet.csv",
		"reads/S2_1.fq.gz",
		"reads/deeper/S3_1.fastq",
		".hidden/S4_1.fastq",
		"nested/S5_1.fastq",
	})

	reads := []string{".fastq", ".fastq.gz", ".fq", ".fq.gz"}

	tests := []struct {
		name          string
		opts          ScanOptions
		wantFileNames []string
	}{
		{
			name:          "non-recursive, all files",
			opts:          ScanOptions{},
			wantFileNames: []string{"S1.fq", "S1_R1_001.fastq.gz", "S1_R2_001.FASTQ.GZ", "SampleSheet.csv"},
		},
		{
			name:          "non-recursive, read suffixes",
			opts:          ScanOptions{Suffixes: reads},
			wantFileNames: []string{"S1.fq", "S1_R1_001.fastq.gz", "S1_R2_001.FASTQ.GZ"},
		},
		{
			name: "recursive, read suffixes, hidden skipped",
			opts: ScanOptions{Suffixes: reads, Recursive: true},
			wantFileNames: []string{
				"S1.fq", "S1_R1_001.fastq.gz", "S1_R2_001.FASTQ.GZ",
				"S2_1.fq.gz", "S3_1.fastq", "S5_1.fastq",
			},
		},
		{
			name:          "suffix without leading dot",
			opts:          ScanOptions{Suffixes: []string{"csv"}},
			wantFileNames: []string{"SampleSheet.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanDirectory(tmpDir, tt.opts)
			if err != nil {
				t.Fatalf("ScanDirectory() error = %v", err)
			}
			if len(result.Errors) != 0 {
				t.Errorf("unexpected non-fatal errors: %v", result.Errors)
			}

			got := baseNames(result.Files)
			want := append([]string(nil), tt.wantFileNames...)
			sort.Strings(want)
			if len(got) != len(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Errorf("file %d: got %s, want %s", i, got[i], want[i])
				}
			}
		})
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := ScanDirectory(filepath.Join(tmpDir, "missing"), ScanOptions{}); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(tmpDir, "file.txt")
	writeFiles(t, tmpDir, []string{"file.txt"})
	if _, err := ScanDirectory(file, ScanOptions{}); err == nil {
		t.Error("expected error for non-directory path")
	}
}

func TestMatchSuffix(t *testing.T) {
	suffixes := []string{".fastq", ".fastq.gz", ".fq", ".fq.gz"}

	tests := []struct {
		name string
		want string
	}{
		{"a_1.fastq.gz", ".fastq.gz"},
		{"a_1.fastq", ".fastq"},
		{"A_1.FQ.GZ", ".fq.gz"},
		{"a_1.fq", ".fq"},
		{"a_1.bam", ""},
		{"a.fastq.gz.md5", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchSuffix(tt.name, suffixes); got != tt.want {
				t.Errorf("MatchSuffix(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestListSubdirs(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, []string{
		"b_sample/x.txt",
		"a_sample/x.txt",
		".hidden/x.txt",
		"plain.txt",
	})
	if err := os.Symlink(filepath.Join(tmpDir, "a_sample"), filepath.Join(tmpDir, "c_link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	got, err := ListSubdirs(tmpDir)
	if err != nil {
		t.Fatalf("ListSubdirs() error = %v", err)
	}

	want := []string{"a_sample", "b_sample", "c_link"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := ListSubdirs(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestIsDirAndExists(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, []string{"f.txt"})

	if !IsDir(tmpDir) {
		t.Error("expected tmpDir to be a directory")
	}
	if IsDir(filepath.Join(tmpDir, "f.txt")) {
		t.Error("regular file is not a directory")
	}
	if !Exists(filepath.Join(tmpDir, "f.txt")) {
		t.Error("expected file to exist")
	}
	if Exists(filepath.Join(tmpDir, "nope")) {
		t.Error("expected missing file to not exist")
	}
}

func TestGlobEscape(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, []string{"S[1]_a.txt", "S1_a.txt"})

	matches, err := filepath.Glob(filepath.Join(dir, GlobEscape("S[1]")+"*"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 1 || filepath.Base(matches[0]) != "S[1]_a.txt" {
		t.Errorf("expected only S[1]_a.txt, got %v", matches)
	}
	if got := GlobEscape("a*b?"); got != `a\*b\?` {
		t.Errorf("GlobEscape = %q", got)
	}
}
