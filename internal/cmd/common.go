package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/harrison/seqtarget/internal/config"
	"github.com/harrison/seqtarget/internal/logger"
	"github.com/harrison/seqtarget/internal/models"
	"github.com/harrison/seqtarget/internal/target"
	"github.com/harrison/seqtarget/internal/walker"
	"github.com/spf13/cobra"
)

// session is the per-invocation state shared by subcommands.
type session struct {
	cfg     *config.Config
	log     logger.Logger
	fileLog *logger.FileLogger
}

func (s *session) Close() {
	if s.fileLog != nil {
		_ = s.fileLog.Close()
	}
}

// newSession loads .env and configuration, applies flag overrides and
// opens the console and file loggers.
func newSession(cmd *cobra.Command) (*session, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var logLevel, logDir *string
	var memoize *bool
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDir = &v
	}
	if cmd.Flags().Changed("memoize") {
		v, _ := cmd.Flags().GetBool("memoize")
		memoize = &v
	}
	var convention *string
	if generic, _ := cmd.Flags().GetBool("generic"); generic {
		v := walker.Generic.String()
		convention = &v
	}
	cfg.MergeWithFlags(logLevel, logDir, convention, memoize)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &session{cfg: cfg}
	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	s.log = console
	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			console.LogWarn(fmt.Sprintf("File logging disabled: %v", err))
		} else {
			s.fileLog = fileLog
			s.log = logger.MultiLogger{console, fileLog}
		}
	}
	return s, nil
}

// resolver builds the target resolver, injecting the configured resolve
// function when one is named.
func (s *session) resolver() (*target.Resolver, error) {
	opts := []target.Option{target.WithMemoize(s.cfg.MemoizeSampleSheets)}
	if s.cfg.Resolver != "" {
		fn, err := target.DefaultRegistry(s.log, s.cfg.MemoizeSampleSheets).Lookup(s.cfg.Resolver)
		if err != nil {
			return nil, err
		}
		opts = append(opts, target.WithResolveFunc(fn))
	}
	return target.NewResolver(s.log, opts...), nil
}

// resolve uses the configured convention (--generic overrides it) and narrows lanes afterwards.
func (s *session) resolve(root string, f models.Filter) ([]models.SampleRun, error) {
	r, err := s.resolver()
	if err != nil {
		return nil, err
	}

	convention, err := walker.ParseConvention(s.cfg.Convention)
	if err != nil {
		return nil, err
	}

	var runs []models.SampleRun
	if convention == walker.Generic {
		runs, err = r.ResolveGeneric(root, f)
	} else {
		runs, err = r.ResolveAll(root, f)
	}
	if err != nil {
		return nil, err
	}
	return target.FilterLanes(runs, f.Lanes), nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("sample", nil, "Samples to include (repeatable)")
	cmd.Flags().String("sample-file", "", "File listing samples to include, one per line")
	cmd.Flags().StringSlice("flowcell", nil, "Flowcells to include (repeatable)")
	cmd.Flags().IntSlice("lane", nil, "Lanes to include, 1-8 (repeatable)")
}

func addConventionFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("generic", false, "Infer runs from read file names instead of metadata files")
}

func filterFromFlags(cmd *cobra.Command) (models.Filter, error) {
	samples, _ := cmd.Flags().GetStringSlice("sample")
	flowcells, _ := cmd.Flags().GetStringSlice("flowcell")
	lanes, _ := cmd.Flags().GetIntSlice("lane")

	if path, _ := cmd.Flags().GetString("sample-file"); path != "" {
		fromFile, err := readSampleFile(path)
		if err != nil {
			return models.Filter{}, err
		}
		samples = append(samples, fromFile...)
	}

	f := models.Filter{Samples: samples, Flowcells: flowcells, Lanes: lanes}
	return f, f.Validate()
}

// readSampleFile reads one sample name per line, skipping blanks and # comments
func readSampleFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample file: %w", err)
	}
	defer file.Close()

	var samples []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		samples = append(samples, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sample file: %w", err)
	}
	return samples, nil
}
