package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for seqtarget
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seqtarget",
		Short: "Locate sequencing runs and derive pipeline target names",
		Long: `seqtarget walks a project/sample/flowcell directory tree, reads the
sample sheets or run-info files it finds (or infers runs from read file
names) and prints the sample run prefixes pipeline stages build on.

It can also invert an output file name back to the upstream files it was
made from, convert run-info files to sample sheets and submit batch jobs.

Configuration is loaded from .seqtarget/config.yaml (or $SEQTARGET_HOME).`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .seqtarget/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Console log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().String("log-dir", "", "Directory for log files")
	cmd.PersistentFlags().Bool("memoize", false, "Write parsed run-info files back as SampleSheet.csv")

	cmd.AddCommand(NewTargetsCommand())
	cmd.AddCommand(NewInvertCommand())
	cmd.AddCommand(NewConvertCommand())
	cmd.AddCommand(NewSubmitCommand())

	return cmd
}
