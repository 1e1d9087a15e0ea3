package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harrison/seqtarget/internal/samplesheet"
	"github.com/spf13/cobra"
)

// NewConvertCommand creates the convert subcommand
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <run-info.yaml>",
		Short: "Convert a run-info file to SampleSheet.csv",
		Long: `Expand a run-info (bcbio-style *-config.yaml) file into one sample sheet
row per lane and multiplex entry. The sheet is written next to the input
unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			out, _ := cmd.Flags().GetString("output")
			path, records, err := samplesheet.ConvertRunInfo(args[0], out)
			if err != nil {
				return err
			}
			s.log.LogInfo(fmt.Sprintf("Saved %s based on %s", path, args[0]))

			green := color.New(color.FgGreen).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d rows)\n", green("Wrote"), path, len(records))
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output path (default: SampleSheet.csv next to the input)")
	return cmd
}
