// Package target resolves a project directory into sample runs and builds
// the names that pipeline stages read and write from them.
package target

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/harrison/seqtarget/internal/logger"
	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/walker"
)

// ResolveFunc turns a project root and filters into sample runs.
// A deployment can substitute its own through WithResolveFunc.
type ResolveFunc func(root string, f models.Filter) ([]models.SampleRun, error)

// Resolver is the entry point for forward resolution and inversion.
// It re-reads the filesystem on every call.
type Resolver struct {
	log      logger.Logger
	override ResolveFunc
	memoize  bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithResolveFunc replaces the built-in metadata resolution used by
// ResolveAll and the inverters. A nil fn keeps the default.
func WithResolveFunc(fn ResolveFunc) Option {
	return func(r *Resolver) {
		r.override = fn
	}
}

// WithMemoize enables writing parsed run-info files back as sample sheets.
func WithMemoize(on bool) Option {
	return func(r *Resolver) {
		r.memoize = on
	}
}

// NewResolver returns a Resolver logging to log.
func NewResolver(log logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{log: logger.OrNop(log)}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ResolveAll resolves root with the metadata convention, or with the
// injected ResolveFunc when one is set.
func (r *Resolver) ResolveAll(root string, f models.Filter) ([]models.SampleRun, error) {
	abs, err := prepare(root, f)
	if err != nil {
		return nil, err
	}
	if r.override != nil {
		return r.override(abs, f)
	}
	return r.walk(walker.Metadata, abs, f)
}

// ResolveGeneric resolves root with the generic convention, inferring runs
// from read file names.
func (r *Resolver) ResolveGeneric(root string, f models.Filter) ([]models.SampleRun, error) {
	abs, err := prepare(root, f)
	if err != nil {
		return nil, err
	}
	return r.walk(walker.Generic, abs, f)
}

func (r *Resolver) walk(convention walker.Convention, root string, f models.Filter) ([]models.SampleRun, error) {
	w := walker.New(convention, r.log)
	w.Reader.Memoize = r.memoize

	runs, err := w.Walk(root, f)
	if err != nil {
		return nil, err
	}
	r.log.LogDebug(fmt.Sprintf("Resolved %d sample runs under %s (%s convention)", len(runs), root, convention))
	return runs, nil
}

func prepare(root string, f models.Filter) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	return abs, nil
}

// FilterLanes keeps runs sequenced on one of lanes. An empty lanes list
// keeps everything, as do runs that carry no lane information.
func FilterLanes(runs []models.SampleRun, lanes []int) []models.SampleRun {
	if len(lanes) == 0 {
		return runs
	}
	want := make(map[int]bool, len(lanes))
	for _, l := range lanes {
		want[l] = true
	}

	kept := make([]models.SampleRun, 0, len(runs))
	for _, run := range runs {
		if run.Lane == "" {
			kept = append(kept, run)
			continue
		}
		lane, err := strconv.Atoi(run.Lane)
		if err == nil && want[lane] {
			kept = append(kept, run)
		}
	}
	return kept
}

// Samples returns the distinct samples owning runs, in first-seen order.
func Samples(runs []models.SampleRun) []models.Sample {
	seen := make(map[string]bool)
	var samples []models.Sample
	for _, run := range runs {
		if seen[run.SamplePrefix] {
			continue
		}
		seen[run.SamplePrefix] = true
		samples = append(samples, run.Sample)
	}
	return samples
}
