// Package staging mirrors the raw data of selected sample runs into an
// output directory with symlinks, so a pipeline can write its results there
// without touching the input tree.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/seqtarget/internal/fileutil"
	"github.com/harrison/seqtarget/internal/logger"
	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/samplesheet"
)

// Linker creates the mirrored tree.
type Linker struct {
	Log logger.Logger
}

// LinkRuns links every file starting with a run's prefix, plus the flowcell
// metadata the run was resolved from (sample sheet and run-info file), from
// indir into the same relative place under outdir. Links that already exist
// are left alone.
//
// The returned runs point at outdir. Runs outside indir are an error.
func (l *Linker) LinkRuns(runs []models.SampleRun, indir, outdir string) ([]models.SampleRun, error) {
	log := logger.OrNop(l.Log)

	in, err := filepath.Abs(indir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", indir, err)
	}
	out, err := filepath.Abs(outdir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", outdir, err)
	}
	if in == out {
		return runs, nil
	}

	staged := make([]models.SampleRun, 0, len(runs))
	linked := 0
	for _, run := range runs {
		rel, err := filepath.Rel(in, run.FlowcellDir())
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("run %s is not below %s", run.SampleRunPrefix, in)
		}
		destDir := filepath.Join(out, rel)
		if err := os.MkdirAll(destDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", destDir, err)
		}

		sources, err := filepath.Glob(fileutil.GlobEscape(run.SampleRunPrefix) + "*")
		if err != nil {
			return nil, fmt.Errorf("failed to list files for %s: %w", run.SampleRunPrefix, err)
		}
		if len(sources) == 0 {
			log.LogWarn(fmt.Sprintf("No files start with %s; nothing to link", run.SampleRunPrefix))
		}
		meta, err := metadataFiles(run)
		if err != nil {
			return nil, err
		}
		sources = append(sources, meta...)

		for _, src := range sources {
			created, err := link(src, filepath.Join(destDir, filepath.Base(src)))
			if err != nil {
				return nil, err
			}
			if created {
				linked++
			}
		}

		run.Sample = models.NewSample(run.ProjectID, out, run.SampleID)
		run.SampleRunPrefix = filepath.Join(destDir, filepath.Base(run.SampleRunPrefix))
		staged = append(staged, run)
	}

	log.LogInfo(fmt.Sprintf("Linked %d files for %d sample runs into %s", linked, len(runs), out))
	return staged, nil
}

// metadataFiles returns the sample sheet and the sample's run-info file of
// the run's flowcell, whichever exist.
func metadataFiles(run models.SampleRun) ([]string, error) {
	dir := run.FlowcellDir()
	var files []string
	if sheet := filepath.Join(dir, samplesheet.FileName); fileutil.Exists(sheet) {
		files = append(files, sheet)
	}
	runInfo, err := samplesheet.FindRunInfo(dir, run.SampleID)
	if err != nil {
		return nil, err
	}
	if runInfo != "" {
		files = append(files, runInfo)
	}
	return files, nil
}

func link(src, dest string) (bool, error) {
	if _, err := os.Lstat(dest); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", dest, err)
	}
	if err := os.Symlink(src, dest); err != nil {
		return false, fmt.Errorf("failed to link %s -> %s: %w", dest, src, err)
	}
	return true, nil
}
