package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Suffixes is a list of file name suffixes to include (e.g., ".fastq.gz").
	// Matching is case-insensitive and multi-part suffixes are supported.
	Suffixes []string
	// Recursive enables recursive directory scanning. Hidden directories
	// are never entered.
	Recursive bool
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains the paths of all matched files, sorted
	Files []string
	// Errors contains non-fatal errors encountered during scanning
	Errors []error
}

// ScanDirectory scans a directory for files matching the provided options.
// Unreadable subdirectories are recorded in ScanResult.Errors and skipped.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	suffixes := make([]string, 0, len(opts.Suffixes))
	for _, s := range opts.Suffixes {
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		suffixes = append(suffixes, strings.ToLower(s))
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == dir {
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if len(suffixes) > 0 && MatchSuffix(d.Name(), suffixes) == "" {
			return nil
		}

		result.Files = append(result.Files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}

// MatchSuffix returns the longest of suffixes that name ends with
// (case-insensitive), or "" when none matches.
func MatchSuffix(name string, suffixes []string) string {
	lower := strings.ToLower(name)
	best := ""
	for _, s := range suffixes {
		s = strings.ToLower(s)
		if strings.HasSuffix(lower, s) && len(s) > len(best) {
			best = s
		}
	}
	return best
}

// ListSubdirs returns the names of the immediate, non-hidden subdirectories
// of dir in lexical order. Symlinks to directories are followed.
func ListSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !IsDir(filepath.Join(dir, e.Name())) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// IsDir reports whether path exists and is a directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GlobEscape quotes glob metacharacters so s matches literally
func GlobEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
