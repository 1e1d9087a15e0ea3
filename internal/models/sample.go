package models

import "path/filepath"

// Sample represents a sequencing sample within a project directory
type Sample struct {
	ProjectID     string // Project identifier, decoded from metadata (double underscores restored to dots)
	SampleID      string // Sample directory name
	SamplePrefix  string // ProjectPrefix/SampleID, anchor for per-sample merged outputs
	ProjectPrefix string // Project (input root) directory
}

// NewSample builds a Sample rooted at projectPrefix
func NewSample(projectID, projectPrefix, sampleID string) Sample {
	return Sample{
		ProjectID:     projectID,
		SampleID:      sampleID,
		SamplePrefix:  filepath.Join(projectPrefix, sampleID),
		ProjectPrefix: projectPrefix,
	}
}

// SampleRun is one physical sequencing run of a sample on a flowcell/lane/index combination.
// Runs found by filename matching carry no lane or index.
type SampleRun struct {
	Sample
	SampleRunPrefix string // Unique prefix, e.g. <flowcell dir>/<sample>_<index>_L00<lane>
	Flowcell        string // Flowcell directory name
	Lane            string // Lane number as found in metadata
	Index           string // Index/barcode sequence
}

// FlowcellDir returns the directory holding the run's read files
func (r SampleRun) FlowcellDir() string {
	return filepath.Dir(r.SampleRunPrefix)
}
