package models

import (
	"errors"
	"fmt"
)

// MaxLane is the highest lane number on a flowcell
const MaxLane = 8

// ErrInvalidLane is returned when a lane filter is outside 1..MaxLane
var ErrInvalidLane = errors.New("invalid lane")

// Filter restricts resolution to a subset of the directory tree.
// Empty slices mean "no restriction".
type Filter struct {
	Samples   []string
	Flowcells []string
	Lanes     []int
}

// Validate checks the filter values supplied by the caller
func (f Filter) Validate() error {
	for _, lane := range f.Lanes {
		if lane < 1 || lane > MaxLane {
			return fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidLane, lane, MaxLane)
		}
	}
	return nil
}

// HasFlowcell reports whether the flowcell passes the filter
func (f Filter) HasFlowcell(name string) bool {
	if len(f.Flowcells) == 0 {
		return true
	}
	for _, fc := range f.Flowcells {
		if fc == name {
			return true
		}
	}
	return false
}
