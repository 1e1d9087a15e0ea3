package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/target"
	"github.com/spf13/cobra"
)

// runJSON is the --json representation of one sample run
type runJSON struct {
	ProjectID       string `json:"project_id"`
	SampleID        string `json:"sample_id"`
	SamplePrefix    string `json:"sample_prefix"`
	ProjectPrefix   string `json:"project_prefix"`
	SampleRunPrefix string `json:"sample_run_prefix"`
	Flowcell        string `json:"flowcell"`
	Lane            string `json:"lane,omitempty"`
	Index           string `json:"index,omitempty"`
}

// NewTargetsCommand creates the targets subcommand
func NewTargetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets <indir>",
		Short: "List the sample runs found under a project directory",
		Long: `Resolve a project directory into sample runs and print one run prefix
per line. With --label/--suffix the derived output names are printed
instead; --sample-level prints one merged name per sample.

Examples:
  seqtarget targets /proj/J.Doe_00_01
  seqtarget targets /proj/J.Doe_00_01 --flowcell 120924_AC003CCCXX --lane 1
  seqtarget targets /proj/J.Doe_00_01 --label .sort --suffix .bam
  seqtarget targets /proj/J.Doe_00_01 --generic --json`,
		Args: cobra.ExactArgs(1),
		RunE: runTargets,
	}

	addFilterFlags(cmd)
	addConventionFlag(cmd)
	cmd.Flags().String("label", "", "Stage label appended to each prefix")
	cmd.Flags().String("suffix", "", "Stage suffix appended after the label")
	cmd.Flags().Bool("sample-level", false, "Print one merged name per sample")
	cmd.Flags().Bool("json", false, "Print sample runs as JSON")

	return cmd
}

func runTargets(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	runs, err := s.resolve(args[0], f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeRunsJSON(out, runs)
	}

	label, _ := cmd.Flags().GetString("label")
	suffix, _ := cmd.Flags().GetString("suffix")
	if sampleLevel, _ := cmd.Flags().GetBool("sample-level"); sampleLevel {
		for _, sample := range target.Samples(runs) {
			fmt.Fprintln(out, target.DeriveSampleName(sample, label, suffix))
		}
		return nil
	}
	for _, run := range runs {
		fmt.Fprintln(out, target.DeriveRunName(run, label, suffix))
	}
	return nil
}

func writeRunsJSON(w io.Writer, runs []models.SampleRun) error {
	items := make([]runJSON, 0, len(runs))
	for _, r := range runs {
		items = append(items, runJSON{
			ProjectID:       r.ProjectID,
			SampleID:        r.SampleID,
			SamplePrefix:    r.SamplePrefix,
			ProjectPrefix:   r.ProjectPrefix,
			SampleRunPrefix: r.SampleRunPrefix,
			Flowcell:        r.Flowcell,
			Lane:            r.Lane,
			Index:           r.Index,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
