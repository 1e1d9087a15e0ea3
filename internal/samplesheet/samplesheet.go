// Package samplesheet reads per-flowcell sample metadata.
//
// Two formats are understood: an Illumina-style SampleSheet.csv and a
// bcbio-style run-info YAML (<sample>*-config.yaml). Both are normalized to
// models.MetadataRecord. Reader tries them in order and reports NotPresent
// when a flowcell has neither.
package samplesheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/csimplestring/go-csv/detector"
	"github.com/gocarina/gocsv"
	"github.com/harrison/seqtarget/internal/filelock"
	"github.com/harrison/seqtarget/internal/models"
)

// FileName is the sample sheet file name looked up in flowcell directories
const FileName = "SampleSheet.csv"

// requiredColumns must appear in a sample sheet header. Run prefixes are
// built from these two; the other columns are optional.
var requiredColumns = []string{"Lane", "Index"}

// utf8BOM prefixes sheets exported from spreadsheet programs
const utf8BOM = "\ufeff"

// ErrMalformedSampleSheet is returned when a sample sheet cannot be decoded
var ErrMalformedSampleSheet = errors.New("malformed sample sheet")

// ParseSampleSheet decodes sample sheet rows from r. Lines starting with '#'
// are dropped before the header is read.
func ParseSampleSheet(r io.Reader) ([]models.MetadataRecord, error) {
	body, err := stripComments(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: no header", ErrMalformedSampleSheet)
	}

	delim := detectDelimiter(body)
	if err := checkHeader(body, delim); err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = delim
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows []*models.MetadataRecord
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSampleSheet, err)
	}

	records := make([]models.MetadataRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *row)
	}
	return records, nil
}

// ReadSampleSheet parses the sample sheet at path.
func ReadSampleSheet(path string) ([]models.MetadataRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample sheet: %w", err)
	}
	defer f.Close()

	records, err := ParseSampleSheet(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// MarshalSampleSheet renders records in sample sheet format, preceded by a
// comment line naming where they came from.
func MarshalSampleSheet(records []models.MetadataRecord, origin string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Generated %s from %s %s by seqtarget\n",
		FileName, origin, now.Format("at 15:04 on Monday 02, January 2006"))

	rows := make([]*models.MetadataRecord, 0, len(records))
	for i := range records {
		rows = append(rows, &records[i])
	}
	if len(rows) == 0 {
		buf.WriteString(strings.Join(models.SampleSheetColumns, ",") + "\n")
		return buf.Bytes(), nil
	}
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, fmt.Errorf("failed to encode sample sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSampleSheet writes records to path under a file lock.
func WriteSampleSheet(path string, records []models.MetadataRecord, origin string) error {
	data, err := MarshalSampleSheet(records, origin, time.Now())
	if err != nil {
		return err
	}
	return filelock.LockAndWrite(path, data)
}

// MemoizeSampleSheet writes records to path unless another process already
// did. It reports whether this call wrote the file.
func MemoizeSampleSheet(path string, records []models.MetadataRecord, origin string) (bool, error) {
	data, err := MarshalSampleSheet(records, origin, time.Now())
	if err != nil {
		return false, err
	}
	return filelock.WriteIfAbsent(path, data)
}

func stripComments(r io.Reader) ([]byte, error) {
	var out bytes.Buffer
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, utf8BOM)
			first = false
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sample sheet: %w", err)
	}
	return out.Bytes(), nil
}

// detectDelimiter returns the most likely field separator, ',' by default.
func detectDelimiter(body []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(body), '"')
	for _, candidate := range delimiters {
		if candidate == "," || candidate == "\t" || candidate == ";" {
			return rune(candidate[0])
		}
	}
	return ','
}

func checkHeader(body []byte, delim rune) error {
	line := body
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		line = body[:i]
	}
	present := make(map[string]bool)
	for _, col := range strings.Split(strings.TrimRight(string(line), "\r"), string(delim)) {
		present[strings.TrimSpace(col)] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: header missing %s", ErrMalformedSampleSheet, strings.Join(missing, ", "))
	}
	return nil
}
