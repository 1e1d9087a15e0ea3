package samplesheet

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/harrison/seqtarget/internal/fileutil"
	"github.com/harrison/seqtarget/internal/logger"
	"github.com/harrison/seqtarget/internal/models"
)

// Status tags the outcome of a metadata lookup
type Status int

const (
	// NotPresent means the source found no metadata file
	NotPresent Status = iota
	// Parsed means records were read from a metadata file
	Parsed
)

func (s Status) String() string {
	if s == Parsed {
		return "parsed"
	}
	return "not-present"
}

// Result is the outcome of reading one flowcell's metadata.
type Result struct {
	Status  Status
	Source  string // File the records came from
	Records []models.MetadataRecord
}

// Source is one metadata format attempt. It returns NotPresent when its file
// does not exist, and an error only when the file exists but cannot be used.
type Source func(flowcellDir, sample string) (Result, error)

// Reader resolves flowcell metadata by trying each source in order.
type Reader struct {
	// Memoize writes records parsed from run-info back as SampleSheet.csv
	Memoize bool

	log     logger.Logger
	sources []Source
}

// NewReader returns a Reader that tries the sample sheet, then run-info.
func NewReader(log logger.Logger) *Reader {
	r := &Reader{log: logger.OrNop(log)}
	r.sources = []Source{r.fromSampleSheet, r.fromRunInfo}
	return r
}

// Read returns the metadata for flowcellDir. The first source that parses
// wins; when none does the Result status is NotPresent.
//
// A file that exists but fails to parse is logged and treated as absent so
// that one bad flowcell does not abort the walk. More than one run-info
// candidate is returned as ErrAmbiguousMetadata.
func (r *Reader) Read(flowcellDir, sample string) (Result, error) {
	for _, source := range r.sources {
		res, err := source(flowcellDir, sample)
		if err != nil {
			if errors.Is(err, ErrAmbiguousMetadata) {
				return Result{}, err
			}
			r.log.LogWarn(fmt.Sprintf("Unusable metadata for sample '%s' in %s: %v", sample, flowcellDir, err))
			continue
		}
		if res.Status == Parsed {
			return res, nil
		}
	}
	return Result{Status: NotPresent}, nil
}

func (r *Reader) fromSampleSheet(flowcellDir, sample string) (Result, error) {
	path := filepath.Join(flowcellDir, FileName)
	if !fileutil.Exists(path) {
		r.log.LogDebug(fmt.Sprintf("No sample sheet for sample '%s' in flowcell '%s'; trying run-info format",
			sample, filepath.Base(flowcellDir)))
		return Result{Status: NotPresent}, nil
	}
	records, err := ReadSampleSheet(path)
	if err != nil {
		return Result{}, err
	}
	return Result{Status: Parsed, Source: path, Records: records}, nil
}

func (r *Reader) fromRunInfo(flowcellDir, sample string) (Result, error) {
	path, err := FindRunInfo(flowcellDir, sample)
	if err != nil {
		return Result{}, err
	}
	if path == "" {
		return Result{Status: NotPresent}, nil
	}
	records, err := ReadRunInfo(path)
	if err != nil {
		return Result{}, err
	}

	if r.Memoize {
		wrote, err := MemoizeSampleSheet(filepath.Join(flowcellDir, FileName), records, path)
		switch {
		case err != nil:
			r.log.LogWarn(fmt.Sprintf("Could not memoize sample sheet for %s: %v", flowcellDir, err))
		case wrote:
			r.log.LogInfo(fmt.Sprintf("Saved %s based on run-info file %s", FileName, path))
		}
	}
	return Result{Status: Parsed, Source: path, Records: records}, nil
}
