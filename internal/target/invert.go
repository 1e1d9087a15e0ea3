package target

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/seqtarget/internal/models"
)

// TaskContext describes the stage asking for its upstream names.
type TaskContext struct {
	Target         string // Output the stage produces
	Label          string // Label the stage appends, e.g. ".merge"
	Suffix         string // Suffix of the stage output, e.g. ".bam"
	UpstreamSuffix string // Suffix of the upstream stage output
	UpstreamLabels string // Labels upstream outputs carry, for sample-level inversion
}

// InvertRunLevel returns the upstream files tc.Target is built from.
//
// The target's parent directory names the sample and the directory above
// it the project. A target stored inside a flowcell directory resolves to
// nothing there and is retried one level up, restricted to that flowcell.
//
// When the target name starts with a run's base name only those runs
// contribute (a per-run file). Otherwise every run of the sample does (a
// file merged across runs). Results keep first-seen order without
// duplicates. No matching runs gives an empty result, not an error.
func (r *Resolver) InvertRunLevel(tc TaskContext) ([]string, error) {
	target, err := filepath.Abs(tc.Target)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", tc.Target, err)
	}
	base := filepath.Base(target)
	if _, err := InvertName(base, tc.Label, tc.Suffix, tc.UpstreamSuffix); err != nil {
		return nil, err
	}

	parent := filepath.Dir(target)
	runs, err := r.ResolveAll(filepath.Dir(parent), models.Filter{Samples: []string{filepath.Base(parent)}})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		sampleDir := filepath.Dir(parent)
		runs, err = r.ResolveAll(filepath.Dir(sampleDir), models.Filter{
			Samples:   []string{filepath.Base(sampleDir)},
			Flowcells: []string{filepath.Base(parent)},
		})
		if err != nil {
			return nil, err
		}
	}
	if len(runs) == 0 {
		r.log.LogWarn(fmt.Sprintf("No sample runs found for %s; no upstream targets", target))
		return []string{}, nil
	}

	var perRun []models.SampleRun
	for _, run := range runs {
		if strings.HasPrefix(base, filepath.Base(run.SampleRunPrefix)) {
			perRun = append(perRun, run)
		}
	}

	names := newOrderedSet()
	if len(perRun) > 0 {
		for _, run := range perRun {
			rest := strings.TrimPrefix(base, filepath.Base(run.SampleRunPrefix))
			up, err := InvertName(rest, tc.Label, tc.Suffix, tc.UpstreamSuffix)
			if err != nil {
				return nil, err
			}
			names.add(run.SampleRunPrefix + up)
		}
		return names.items, nil
	}

	for _, run := range runs {
		rest := strings.Replace(base, run.SampleID, "", 1)
		up, err := InvertName(rest, tc.Label, tc.Suffix, tc.UpstreamSuffix)
		if err != nil {
			return nil, err
		}
		names.add(run.SampleRunPrefix + up)
	}
	return names.items, nil
}

// InvertSampleLevel returns one upstream name per sample of the project
// holding tc.Target: SamplePrefix + UpstreamLabels + UpstreamSuffix.
func (r *Resolver) InvertSampleLevel(tc TaskContext, f models.Filter) ([]string, error) {
	target, err := filepath.Abs(tc.Target)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", tc.Target, err)
	}

	runs, err := r.ResolveAll(filepath.Dir(target), f)
	if err != nil {
		return nil, err
	}

	names := newOrderedSet()
	for _, sample := range Samples(FilterLanes(runs, f.Lanes)) {
		names.add(DeriveSampleName(sample, tc.UpstreamLabels, tc.UpstreamSuffix))
	}
	return names.items, nil
}

type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool), items: []string{}}
}

func (s *orderedSet) add(item string) {
	if s.seen[item] {
		return
	}
	s.seen[item] = true
	s.items = append(s.items, item)
}
