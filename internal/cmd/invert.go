package cmd

import (
	"fmt"

	"github.com/harrison/seqtarget/internal/target"
	"github.com/spf13/cobra"
)

// NewInvertCommand creates the invert subcommand
func NewInvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invert <target>",
		Short: "Print the upstream files an output file is built from",
		Long: `Given the name of a file a pipeline stage produces, print the upstream
files it depends on, one per line.

The target's parent directory is taken as the sample and the directory
above it as the project. With --sample-level the target's directory is the
project and one name per sample is printed. The sample, flowcell and lane
filters only apply with --sample-level.

Examples:
  seqtarget invert /proj/P/P001_101_index3/P001_101_index3.sort.merge.bam \
      --label .merge --suffix .bam --upstream-suffix .bam
  seqtarget invert /proj/P/all.vcf.tar.gz --sample-level \
      --upstream-labels .sort.merge.dup --upstream-suffix .vcf`,
		Args: cobra.ExactArgs(1),
		RunE: runInvert,
	}

	addFilterFlags(cmd)
	cmd.Flags().String("label", "", "Label the stage appends to its output")
	cmd.Flags().String("suffix", "", "Suffix of the stage output")
	cmd.Flags().String("upstream-suffix", "", "Suffix of the upstream stage output")
	cmd.Flags().String("upstream-labels", "", "Labels carried by upstream outputs (sample level)")
	cmd.Flags().Bool("sample-level", false, "Invert to one name per sample of the project")

	return cmd
}

func runInvert(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.resolver()
	if err != nil {
		return err
	}

	tc := target.TaskContext{Target: args[0]}
	tc.Label, _ = cmd.Flags().GetString("label")
	tc.Suffix, _ = cmd.Flags().GetString("suffix")
	tc.UpstreamSuffix, _ = cmd.Flags().GetString("upstream-suffix")
	tc.UpstreamLabels, _ = cmd.Flags().GetString("upstream-labels")

	var names []string
	if sampleLevel, _ := cmd.Flags().GetBool("sample-level"); sampleLevel {
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		names, err = r.InvertSampleLevel(tc, f)
		if err != nil {
			return err
		}
	} else {
		for _, flag := range []string{"sample", "sample-file", "flowcell", "lane"} {
			if cmd.Flags().Changed(flag) {
				return fmt.Errorf("--%s applies only with --sample-level", flag)
			}
		}
		names, err = r.InvertRunLevel(tc)
		if err != nil {
			return err
		}
	}

	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
