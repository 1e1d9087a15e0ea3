// Package walker enumerates the project/sample/flowcell directory tree and
// turns each flowcell into sample runs.
//
// Two layouts are supported. Under the metadata convention only flowcell
// directories whose name ends in "XX" are visited and their runs come from
// a sample sheet or run-info file. Under the generic convention every
// subdirectory is a flowcell and runs are inferred from read file names.
package walker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/seqtarget/internal/fileutil"
	"github.com/harrison/seqtarget/internal/logger"
	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/naming"
	"github.com/harrison/seqtarget/internal/readname"
	"github.com/harrison/seqtarget/internal/samplesheet"
)

// FlowcellSuffix marks flowcell directories under the metadata convention
const FlowcellSuffix = "XX"

// Convention selects how flowcell directories are recognized and read.
type Convention int

const (
	// Metadata reads sample sheets or run-info files in "XX" flowcell dirs
	Metadata Convention = iota
	// Generic infers runs from read file names in any subdirectory
	Generic
)

// String returns the config name of the convention
func (c Convention) String() string {
	switch c {
	case Metadata:
		return "metadata"
	case Generic:
		return "generic"
	default:
		return "unknown"
	}
}

// ParseConvention maps a config value to a Convention
func ParseConvention(name string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "metadata":
		return Metadata, nil
	case "generic":
		return Generic, nil
	default:
		return Metadata, fmt.Errorf("unknown convention %q (expected metadata or generic)", name)
	}
}

// Walker walks one project directory per call. It keeps no state between calls.
type Walker struct {
	Convention Convention
	Reader     *samplesheet.Reader
	Log        logger.Logger
}

// New returns a Walker for the given convention with a fresh metadata reader.
func New(convention Convention, log logger.Logger) *Walker {
	log = logger.OrNop(log)
	return &Walker{
		Convention: convention,
		Reader:     samplesheet.NewReader(log),
		Log:        log,
	}
}

// Walk returns one SampleRun per metadata record (or inferred read prefix)
// found below root, in sample, flowcell, record order. Missing directories
// and flowcells without metadata are logged and contribute nothing.
//
// f.Lanes is not applied here; see target.FilterLanes.
func (w *Walker) Walk(root string, f models.Filter) ([]models.SampleRun, error) {
	log := logger.OrNop(w.Log)

	if !fileutil.IsDir(root) {
		log.LogWarn(fmt.Sprintf("No such directory '%s'; no targets to resolve", root))
		return nil, nil
	}

	samples := f.Samples
	if len(samples) == 0 {
		var err error
		samples, err = fileutil.ListSubdirs(root)
		if err != nil {
			log.LogWarn(fmt.Sprintf("Could not list samples in '%s': %v", root, err))
			return nil, nil
		}
	}

	var runs []models.SampleRun
	for _, sample := range samples {
		sampleDir := filepath.Join(root, sample)
		if !fileutil.IsDir(sampleDir) {
			log.LogWarn(fmt.Sprintf("No directory for sample '%s' in '%s'; skipping", sample, root))
			continue
		}

		flowcells, err := w.flowcells(sampleDir, f)
		if err != nil {
			log.LogWarn(fmt.Sprintf("Could not list flowcells for sample '%s': %v", sample, err))
			continue
		}

		for _, fc := range flowcells {
			fcDir := filepath.Join(sampleDir, fc)
			var found []models.SampleRun
			if w.Convention == Generic {
				found = w.genericRuns(root, sample, fcDir)
			} else {
				found, err = w.metadataRuns(root, sample, fcDir)
				if err != nil {
					return nil, fmt.Errorf("sample %s flowcell %s: %w", sample, fc, err)
				}
			}
			runs = append(runs, found...)
		}
	}
	return runs, nil
}

func (w *Walker) flowcells(sampleDir string, f models.Filter) ([]string, error) {
	dirs, err := fileutil.ListSubdirs(sampleDir)
	if err != nil {
		return nil, err
	}
	var kept []string
	for _, d := range dirs {
		if w.Convention == Metadata && !strings.HasSuffix(d, FlowcellSuffix) {
			continue
		}
		if !f.HasFlowcell(d) {
			continue
		}
		kept = append(kept, d)
	}
	return kept, nil
}

func (w *Walker) metadataRuns(root, sample, fcDir string) ([]models.SampleRun, error) {
	log := logger.OrNop(w.Log)
	reader := w.Reader
	if reader == nil {
		reader = samplesheet.NewReader(log)
	}

	fc := filepath.Base(fcDir)
	res, err := reader.Read(fcDir, sample)
	if err != nil {
		return nil, err
	}
	if res.Status == samplesheet.NotPresent {
		log.LogWarn(fmt.Sprintf("No sample information for sample '%s' in flowcell '%s'; skipping", sample, fc))
		return nil, nil
	}

	runs := make([]models.SampleRun, 0, len(res.Records))
	for _, rec := range res.Records {
		if rec.Lane == "" || rec.Index == "" {
			log.LogWarn(fmt.Sprintf("Record for sample '%s' in %s lacks lane or index; skipping", rec.SampleID, res.Source))
			continue
		}
		log.LogInfo(fmt.Sprintf("Adding sample '%s' (barcode %s) from flowcell '%s' lane %s", sample, rec.Index, fc, rec.Lane))
		runs = append(runs, models.SampleRun{
			Sample:          models.NewSample(projectID(rec, root), root, sample),
			SampleRunPrefix: filepath.Join(fcDir, naming.RunName(sample, rec.Index, rec.Lane)),
			Flowcell:        fc,
			Lane:            rec.Lane,
			Index:           rec.Index,
		})
	}
	return runs, nil
}

func (w *Walker) genericRuns(root, sample, fcDir string) []models.SampleRun {
	log := logger.OrNop(w.Log)
	fc := filepath.Base(fcDir)

	prefixes, err := readname.Match(fcDir, log)
	if err != nil {
		log.LogWarn(fmt.Sprintf("Could not scan flowcell '%s' of sample '%s': %v", fc, sample, err))
		return nil
	}
	if len(prefixes) == 0 {
		log.LogDebug(fmt.Sprintf("No read files for sample '%s' in '%s'", sample, fcDir))
		return nil
	}

	project := filepath.Base(root)
	runs := make([]models.SampleRun, 0, len(prefixes))
	for _, prefix := range prefixes {
		runs = append(runs, models.SampleRun{
			Sample:          models.NewSample(project, root, sample),
			SampleRunPrefix: prefix,
			Flowcell:        fc,
		})
	}
	return runs
}

// projectID decodes the project of a record, falling back to the
// Description column and then to the project directory name.
func projectID(rec models.MetadataRecord, root string) string {
	switch {
	case rec.SampleProject != "":
		return naming.UnescapeProject(rec.SampleProject)
	case rec.Description != "":
		return naming.UnescapeProject(rec.Description)
	default:
		return filepath.Base(root)
	}
}
