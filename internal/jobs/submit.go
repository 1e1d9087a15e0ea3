package jobs

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/harrison/seqtarget/internal/logger"
)

// Submitter hands a job to the scheduler and returns its handle.
type Submitter interface {
	Submit(ctx context.Context, t *Template) (string, error)
}

// CommandRunner abstracts process execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name and returns its combined output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// DryRunSubmitter logs what would be submitted and returns a fresh handle.
type DryRunSubmitter struct {
	Log logger.Logger
}

// Submit implements Submitter.
func (d *DryRunSubmitter) Submit(_ context.Context, t *Template) (string, error) {
	log := logger.OrNop(d.Log)
	handle := "dry-run-" + uuid.New().String()
	log.LogInfo(fmt.Sprintf("(DRY_RUN) %s: %s", t.JobName, t.CommandLine()))
	log.LogDebug(fmt.Sprintf("(DRY_RUN) native specification: %s", t.NativeSpecification()))
	return handle, nil
}

// SbatchSubmitter submits through sbatch --parsable.
type SbatchSubmitter struct {
	Command string // Defaults to "sbatch"
	Runner  CommandRunner
	Log     logger.Logger
}

// Submit implements Submitter. The returned handle is the scheduler job id.
func (s *SbatchSubmitter) Submit(ctx context.Context, t *Template) (string, error) {
	log := logger.OrNop(s.Log)
	command := s.Command
	if command == "" {
		command = "sbatch"
	}
	runner := s.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	args := append([]string{"--parsable"}, t.Args()...)
	args = append(args, "--wrap", t.CommandLine())

	log.LogInfo(fmt.Sprintf("Submitting job with native specification %s", t.NativeSpecification()))
	log.LogDebug(fmt.Sprintf("Working directory: %s", t.WorkingDirectory))

	out, err := runner.Run(ctx, command, args...)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", command, err, strings.TrimSpace(string(out)))
	}

	// --parsable prints "<id>[;<cluster>]"
	id := strings.TrimSpace(string(out))
	if i := strings.IndexByte(id, ';'); i >= 0 {
		id = id[:i]
	}
	if id == "" {
		return "", fmt.Errorf("%s returned no job id", command)
	}
	log.LogInfo(fmt.Sprintf("Your job has been submitted with id %s", id))
	return id, nil
}

var (
	_ Submitter = (*DryRunSubmitter)(nil)
	_ Submitter = (*SbatchSubmitter)(nil)
)
