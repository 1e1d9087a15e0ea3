// Package readname infers sample run prefixes from read file names when a
// flowcell directory carries no metadata file.
package readname

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/harrison/seqtarget/internal/fileutil"
	"github.com/harrison/seqtarget/internal/logger"
)

// ReadSuffixes are the recognized read file endings
var ReadSuffixes = []string{".fastq", ".fastq.gz", ".fq", ".fq.gz"}

var (
	// <prefix>_<digits>.<fastq|fq>[.gz]
	partPattern = regexp.MustCompile(`^(.+)_[0-9]+\.(?i:fastq|fq)(?i:\.gz)?$`)
	// lane + read direction marker, e.g. L001_R1
	laneReadPattern = regexp.MustCompile(`L[0-9]+_R[12]`)
)

// Prefix returns the run prefix encoded in a read file base name.
// ok is false when the name is a read file without the _<digits> part suffix.
func Prefix(name string) (prefix string, ok bool) {
	m := partPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	prefix = m[1]
	if loc := laneReadPattern.FindStringIndex(prefix); loc != nil {
		prefix = strings.TrimRight(prefix[:loc[0]], "_")
	}
	if prefix == "" {
		return "", false
	}
	return prefix, true
}

// Match scans flowcellDir recursively and returns the distinct run prefixes
// (directory of the read file joined with its Prefix), sorted.
// Read files whose names do not fit are skipped with a warning.
func Match(flowcellDir string, log logger.Logger) ([]string, error) {
	log = logger.OrNop(log)

	result, err := fileutil.ScanDirectory(flowcellDir, fileutil.ScanOptions{
		Suffixes:  ReadSuffixes,
		Recursive: true,
	})
	if err != nil {
		return nil, err
	}
	for _, scanErr := range result.Errors {
		log.LogWarn(fmt.Sprintf("Skipping unreadable entry under %s: %v", flowcellDir, scanErr))
	}

	seen := make(map[string]bool)
	var prefixes []string
	for _, file := range result.Files {
		name := filepath.Base(file)
		prefix, ok := Prefix(name)
		if !ok {
			log.LogWarn(fmt.Sprintf("Read file '%s' does not end in _<number>%s; skipping",
				file, fileutil.MatchSuffix(name, ReadSuffixes)))
			continue
		}
		full := filepath.Join(filepath.Dir(file), prefix)
		if seen[full] {
			continue
		}
		seen[full] = true
		prefixes = append(prefixes, full)
	}

	sort.Strings(prefixes)
	return prefixes, nil
}
