package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/harrison/seqtarget/internal/jobs"
	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/staging"
	"github.com/harrison/seqtarget/internal/target"
	"github.com/spf13/cobra"
)

// NewSubmitCommand creates the submit subcommand
func NewSubmitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <indir> [-- command...]",
		Short: "Submit batch jobs for the samples of a project",
		Long: `Resolve a project directory, group its samples into batches and submit
one scheduler job per batch. Each job runs the given command followed by
the input directory, one --sample flag per sample of the batch and the
--flowcell and --lane filters of the submission.

When --output-dir differs from the input directory the raw data of the
selected runs is linked there first and jobs run against the linked tree,
so subsets of samples or flowcells can be processed separately.

Scheduler defaults come from the job section of the config file.

Examples:
  seqtarget submit /proj/P -A b2013064 --dry-run
  seqtarget submit /proj/P -A b2013064 -t 1-00:00:00 -N 2 --output-dir /scratch/P -- pipeline run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSubmit,
	}

	addFilterFlags(cmd)
	addConventionFlag(cmd)
	cmd.Flags().StringP("account", "A", "", "Project account to charge")
	cmd.Flags().StringP("partition", "p", "", "Partition (node, core, ...)")
	cmd.Flags().StringP("time", "t", "", "Wall-clock limit, [d-][hh:]mm:ss")
	cmd.Flags().StringP("job-name", "J", "", "Job name")
	cmd.Flags().IntP("batch-size", "N", 0, "Samples per job (0 = use config)")
	cmd.Flags().String("email", "", "Address for job notifications")
	cmd.Flags().StringSlice("extra", nil, "Extra scheduler options, e.g. --extra=--mem=4G")
	cmd.Flags().StringP("output-dir", "O", "", "Directory to link raw data into and run from")
	cmd.Flags().Bool("dry-run", false, "Log the jobs instead of submitting them")

	return cmd
}

func runSubmit(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	indir := args[0]
	command := args[1:]
	if len(command) == 0 {
		command = []string{"seqtarget", "targets"}
	}

	settings := s.cfg.Job
	applySettingsFlags(cmd, &settings)

	f, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	runs, err := s.resolve(indir, f)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		s.log.LogWarn(fmt.Sprintf("No sample runs under %s; nothing to submit", indir))
		return nil
	}

	workdir := indir
	if outdir, _ := cmd.Flags().GetString("output-dir"); outdir != "" {
		linker := &staging.Linker{Log: s.log}
		runs, err = linker.LinkRuns(runs, indir, outdir)
		if err != nil {
			return err
		}
		workdir = outdir
	}
	workdir, err = filepath.Abs(workdir)
	if err != nil {
		return err
	}

	var submitter jobs.Submitter
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		submitter = &jobs.DryRunSubmitter{Log: s.log}
	} else {
		submitter = &jobs.SbatchSubmitter{Command: settings.SubmitCommand, Log: s.log}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	batches := jobs.Batch(target.Samples(runs), settings.BatchSize)
	green := color.New(color.FgGreen).SprintFunc()
	for i, batch := range batches {
		jobCommand := append(append([]string{}, command...), workdir)
		for _, sample := range batch {
			jobCommand = append(jobCommand, "--sample", sample.SampleID)
		}
		jobCommand = append(jobCommand, filterArgs(f)...)

		batchSettings := settings
		if len(batches) > 1 {
			batchSettings.JobName = fmt.Sprintf("%s-%d", settings.JobName, i+1)
		}
		tmpl, err := jobs.NewTemplate(batchSettings, jobCommand)
		if err != nil {
			return err
		}
		handle, err := submitter.Submit(ctx, tmpl)
		if err != nil {
			return fmt.Errorf("batch %d: %w", i+1, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%d samples)\n", green("Submitted"), tmpl.JobName, handle, len(batch))
	}
	return nil
}

func applySettingsFlags(cmd *cobra.Command, settings *jobs.Settings) {
	str := func(flag string, dst *string) {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	str("account", &settings.Account)
	str("partition", &settings.Partition)
	str("time", &settings.Time)
	str("job-name", &settings.JobName)
	str("email", &settings.Email)
	if cmd.Flags().Changed("batch-size") {
		settings.BatchSize, _ = cmd.Flags().GetInt("batch-size")
	}
	if cmd.Flags().Changed("extra") {
		extra, _ := cmd.Flags().GetStringSlice("extra")
		settings.Extra = append(append([]string{}, settings.Extra...), extra...)
	}
}

// filterArgs renders the flowcell and lane filters as flags for a job command
func filterArgs(f models.Filter) []string {
	var args []string
	for _, fc := range f.Flowcells {
		args = append(args, "--flowcell", fc)
	}
	for _, lane := range f.Lanes {
		args = append(args, "--lane", strconv.Itoa(lane))
	}
	return args
}
