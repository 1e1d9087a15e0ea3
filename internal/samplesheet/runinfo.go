package samplesheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/seqtarget/internal/fileutil"
	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/naming"
	"gopkg.in/yaml.v3"
)

// RunInfoSuffix ends every run-info file name
const RunInfoSuffix = "-config.yaml"

// Fixed values for columns the run-info format does not carry
const (
	defaultControl  = "N"
	defaultRecipe   = "R1"
	defaultOperator = "NN"
)

// ErrAmbiguousMetadata is returned when more than one run-info file matches a sample
var ErrAmbiguousMetadata = errors.New("ambiguous run-info metadata")

// ErrMalformedRunInfo is returned when a run-info document has no lane entries
var ErrMalformedRunInfo = errors.New("malformed run-info")

// scalar accepts any YAML scalar (lanes are often written as bare integers)
type scalar string

func (s *scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar, got %s", value.Line, nodeKind(value.Kind))
	}
	*s = scalar(value.Value)
	return nil
}

type multiplexEntry struct {
	Name       scalar `yaml:"name"`
	Sequence   scalar `yaml:"sequence"`
	SampleProj scalar `yaml:"sample_prj"`
}

type laneEntry struct {
	FlowcellID  scalar           `yaml:"flowcell_id"`
	Lane        scalar           `yaml:"lane"`
	GenomeBuild scalar           `yaml:"genome_build"`
	Multiplex   []multiplexEntry `yaml:"multiplex"`
}

// FindRunInfo returns the single run-info file for sample in dir.
// It returns "" when there is none and ErrAmbiguousMetadata when several match.
func FindRunInfo(dir, sample string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, fileutil.GlobEscape(sample)+"*"+RunInfoSuffix))
	if err != nil {
		return "", fmt.Errorf("failed to search run-info in %s: %w", dir, err)
	}
	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, filepath.Base(m))
		}
		return "", fmt.Errorf("%w: %d files match %s*%s in %s: %s",
			ErrAmbiguousMetadata, len(matches), sample, RunInfoSuffix, dir, strings.Join(names, ", "))
	}
}

// ParseRunInfo expands a run-info document into one record per lane x multiplex entry.
// The lane list is read from the top-level "details" key, or from the
// document root when that is itself a sequence.
func ParseRunInfo(data []byte) ([]models.MetadataRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRunInfo, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedRunInfo)
	}

	lanesNode := doc.Content[0]
	if lanesNode.Kind == yaml.MappingNode {
		details := mappingValue(lanesNode, "details")
		if details == nil {
			return nil, fmt.Errorf("%w: no details key and root is not a sequence", ErrMalformedRunInfo)
		}
		lanesNode = details
	}
	if lanesNode.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: lane entries must be a sequence, got %s", ErrMalformedRunInfo, nodeKind(lanesNode.Kind))
	}

	var lanes []laneEntry
	if err := lanesNode.Decode(&lanes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRunInfo, err)
	}

	var records []models.MetadataRecord
	for _, lane := range lanes {
		for _, mp := range lane.Multiplex {
			project := string(mp.SampleProj)
			records = append(records, models.MetadataRecord{
				FCID:          string(lane.FlowcellID),
				Lane:          string(lane.Lane),
				SampleID:      string(mp.Name),
				SampleRef:     string(lane.GenomeBuild),
				Index:         string(mp.Sequence),
				Description:   naming.EscapeProject(project),
				Control:       defaultControl,
				Recipe:        defaultRecipe,
				Operator:      defaultOperator,
				SampleProject: project,
			})
		}
	}
	return records, nil
}

// ReadRunInfo parses the run-info file at path.
func ReadRunInfo(path string) ([]models.MetadataRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run-info: %w", err)
	}
	records, err := ParseRunInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ConvertRunInfo reads a run-info file and writes the equivalent sample
// sheet to out (SampleSheet.csv next to the run-info file when out is "").
// It returns the written path and records.
func ConvertRunInfo(path, out string) (string, []models.MetadataRecord, error) {
	records, err := ReadRunInfo(path)
	if err != nil {
		return "", nil, err
	}
	if out == "" {
		out = filepath.Join(filepath.Dir(path), FileName)
	}
	if err := WriteSampleSheet(out, records, path); err != nil {
		return "", nil, err
	}
	return out, records, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			v := m.Content[i+1]
			if v.Kind == yaml.ScalarNode && v.Tag == "!!null" {
				return nil
			}
			return v
		}
	}
	return nil
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
