// Package jobs turns resolved samples into batch-scheduler submissions.
// The scheduler itself is an external collaborator reached through a
// Submitter.
package jobs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/harrison/seqtarget/internal/models"
)

// ErrInvalidTime is returned for wall-clock limits that are not [d-][hh:]mm:ss
var ErrInvalidTime = errors.New("invalid time limit")

// Settings are the scheduler parameters shared by every job of a submission.
type Settings struct {
	Account          string   `yaml:"account"`
	Partition        string   `yaml:"partition"`
	Time             string   `yaml:"time"`
	JobName          string   `yaml:"job_name"`
	WorkingDirectory string   `yaml:"working_directory"`
	OutputPath       string   `yaml:"output_path"`
	ErrorPath        string   `yaml:"error_path"`
	Email            string   `yaml:"email"`
	BatchSize        int      `yaml:"batch_size"`
	SubmitCommand    string   `yaml:"submit_command"`
	Extra            []string `yaml:"extra"`
}

// DefaultSettings mirrors the usual cluster defaults.
func DefaultSettings() Settings {
	return Settings{
		Partition:        "node",
		Time:             "10:00:00",
		JobName:          "seqtarget",
		WorkingDirectory: ".",
		OutputPath:       ".",
		ErrorPath:        ".",
		BatchSize:        4,
		SubmitCommand:    "sbatch",
	}
}

// Keys set through dedicated Settings fields; they are dropped from Extra.
var reservedKeys = map[string]bool{
	"--mail-user": true, "--mail-type": true,
	"-o": true, "--output": true,
	"-e": true, "--error": true,
	"-D": true, "--workdir": true,
	"-J": true, "--job-name": true,
	"-p": true, "--partition": true,
	"-t": true, "--time": true,
	"-A": true, "--account": true,
}

var timePattern = regexp.MustCompile(`^(?:([0-9]+)-)?(?:([0-9]+):)?([0-9]+):([0-9]+)$`)

// ConvertTime normalizes a [d-][hh:]mm:ss limit to hh:mm:ss, folding days
// into hours.
func ConvertTime(t string) (string, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(t))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}
	num := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	hours := num(m[1])*24 + num(m[2])
	return fmt.Sprintf("%02d:%02d:%02d", hours, num(m[3]), num(m[4])), nil
}

// ParseOptions reads scheduler options such as ["--mem=4G", "-C", "fat", "--exclusive"].
// Flags without a value map to "".
func ParseOptions(opts []string) map[string]string {
	var tokens []string
	for _, opt := range opts {
		for _, field := range strings.Fields(opt) {
			tokens = append(tokens, strings.SplitN(field, "=", 2)...)
		}
	}

	parsed := make(map[string]string)
	for i, tok := range tokens {
		if !strings.HasPrefix(tok, "-") {
			continue
		}
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") {
			parsed[tok] = tokens[i+1]
		} else {
			parsed[tok] = ""
		}
	}
	return parsed
}

// Template is one fully-formed job.
type Template struct {
	JobName          string
	Time             string
	Partition        string
	Account          string
	WorkingDirectory string
	OutputPath       string
	ErrorPath        string
	Email            string
	Extra            string
	Command          []string
}

// NewTemplate validates s and builds a job running command.
func NewTemplate(s Settings, command []string) (*Template, error) {
	if s.Account == "" {
		return nil, errors.New("job account is required")
	}
	if len(command) == 0 {
		return nil, errors.New("job command is empty")
	}
	limit, err := ConvertTime(s.Time)
	if err != nil {
		return nil, err
	}

	opts := ParseOptions(s.Extra)
	keys := make([]string, 0, len(opts))
	for k := range opts {
		if !reservedKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	extra := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := opts[k]; {
		case v == "":
			extra = append(extra, k)
		case strings.HasPrefix(k, "--"):
			extra = append(extra, k+"="+v)
		default:
			extra = append(extra, k+" "+v)
		}
	}

	return &Template{
		JobName:          s.JobName,
		Time:             limit,
		Partition:        s.Partition,
		Account:          s.Account,
		WorkingDirectory: s.WorkingDirectory,
		OutputPath:       s.OutputPath,
		ErrorPath:        s.ErrorPath,
		Email:            s.Email,
		Extra:            strings.Join(extra, " "),
		Command:          command,
	}, nil
}

// NativeSpecification is the scheduler resource request for t.
func (t *Template) NativeSpecification() string {
	spec := fmt.Sprintf("-t %s -p %s -A %s", t.Time, t.Partition, t.Account)
	if t.Extra != "" {
		spec += " " + t.Extra
	}
	return spec
}

// Args returns the scheduler arguments preceding the wrapped command.
// Output and error paths that are directories get a per-job file name.
func (t *Template) Args() []string {
	args := []string{"-J", t.JobName}
	if t.WorkingDirectory != "" {
		args = append(args, "-D", t.WorkingDirectory)
	}
	if t.OutputPath != "" {
		args = append(args, "-o", logPath(t.OutputPath, t.JobName, ".out"))
	}
	if t.ErrorPath != "" {
		args = append(args, "-e", logPath(t.ErrorPath, t.JobName, ".err"))
	}
	if t.Email != "" {
		args = append(args, "--mail-user", t.Email, "--mail-type", "ALL")
	}
	return append(args, strings.Fields(t.NativeSpecification())...)
}

// CommandLine is the command the job runs, as a single shell string.
func (t *Template) CommandLine() string {
	return strings.Join(t.Command, " ")
}

func logPath(path, jobName, ext string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, jobName+"-%j"+ext)
	}
	return path
}

// Batch splits samples into groups of at most n, one group per job.
// n <= 0 puts everything in one group.
func Batch(samples []models.Sample, n int) [][]models.Sample {
	if len(samples) == 0 {
		return nil
	}
	if n <= 0 || n >= len(samples) {
		return [][]models.Sample{samples}
	}
	var batches [][]models.Sample
	for start := 0; start < len(samples); start += n {
		end := start + n
		if end > len(samples) {
			end = len(samples)
		}
		batches = append(batches, samples[start:end])
	}
	return batches
}
