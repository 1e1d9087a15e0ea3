package models

// SampleSheetColumns is the fixed sample sheet header, in file order
var SampleSheetColumns = []string{
	"FCID", "Lane", "SampleID", "SampleRef", "Index",
	"Description", "Control", "Recipe", "Operator", "SampleProject",
}

// MetadataRecord is one sample sheet row describing a sample on a flowcell lane.
// Field order matches SampleSheetColumns; gocsv writes the header from the tags.
type MetadataRecord struct {
	FCID          string `csv:"FCID" yaml:"fcid"`
	Lane          string `csv:"Lane" yaml:"lane"`
	SampleID      string `csv:"SampleID" yaml:"sample_id"`
	SampleRef     string `csv:"SampleRef" yaml:"sample_ref"`
	Index         string `csv:"Index" yaml:"index"`
	Description   string `csv:"Description" yaml:"description"`
	Control       string `csv:"Control" yaml:"control"`
	Recipe        string `csv:"Recipe" yaml:"recipe"`
	Operator      string `csv:"Operator" yaml:"operator"`
	SampleProject string `csv:"SampleProject" yaml:"sample_project"`
}
