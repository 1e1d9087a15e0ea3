package target

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/naming"
)

// ErrLabelNotFound is returned when a name does not carry the label and
// suffix it is being inverted through
var ErrLabelNotFound = errors.New("label not found in name")

// DeriveRunName is the per-run output name for a stage appending label and suffix.
func DeriveRunName(run models.SampleRun, label, suffix string) string {
	return run.SampleRunPrefix + label + suffix
}

// DeriveSampleName is the per-sample (merged) output name for a stage.
func DeriveSampleName(sample models.Sample, label, suffix string) string {
	return sample.SamplePrefix + label + suffix
}

// InvertName replaces the last occurrence of label+suffix in name with
// upstreamSuffix. Only the last occurrence is touched, since sample ids
// may themselves contain the label text.
func InvertName(name, label, suffix, upstreamSuffix string) (string, error) {
	marker := label + suffix
	if marker == "" || !strings.Contains(name, marker) {
		return "", fmt.Errorf("%w: %q does not contain %q", ErrLabelNotFound, name, marker)
	}
	return naming.RReplace(name, marker, upstreamSuffix, 1), nil
}
