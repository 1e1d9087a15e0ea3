package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/seqtarget/internal/jobs"
	"github.com/harrison/seqtarget/internal/logger"
	"github.com/harrison/seqtarget/internal/walker"
	"gopkg.in/yaml.v3"
)

// Config represents seqtarget configuration
type Config struct {
	// LogLevel sets the minimum level written to the console (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is where per-run log files are written; empty disables file logging
	LogDir string `yaml:"log_dir"`

	// Convention is the directory layout resolved by default (metadata or generic)
	Convention string `yaml:"convention"`

	// Resolver names a registered resolve function replacing the built-in one
	Resolver string `yaml:"resolver"`

	// MemoizeSampleSheets writes parsed run-info files back as SampleSheet.csv
	MemoizeSampleSheets bool `yaml:"memoize_sample_sheets"`

	// Job holds batch-scheduler defaults for the submit command
	Job jobs.Settings `yaml:"job"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		LogDir:     defaultLogDir(),
		Convention: walker.Metadata.String(),
		Job:        jobs.DefaultSettings(),
	}
}

// defaultLogDir is logs/ inside the seqtarget home
func defaultLogDir() string {
	home, err := GetHome()
	if err != nil {
		return filepath.Join(HomeDirName, "logs")
	}
	return filepath.Join(home, "logs")
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if fileCfg.Convention != "" {
		cfg.Convention = fileCfg.Convention
	}
	if fileCfg.Resolver != "" {
		cfg.Resolver = fileCfg.Resolver
	}
	if fileCfg.MemoizeSampleSheets {
		cfg.MemoizeSampleSheets = true
	}

	// Only keys present in the job section override defaults
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if jobSection, ok := rawMap["job"].(map[string]interface{}); ok {
			mergeJob(&cfg.Job, fileCfg.Job, jobSection)
		}
	}

	return cfg, nil
}

func mergeJob(dst *jobs.Settings, src jobs.Settings, present map[string]interface{}) {
	has := func(key string) bool {
		_, ok := present[key]
		return ok
	}
	if has("account") {
		dst.Account = src.Account
	}
	if has("partition") {
		dst.Partition = src.Partition
	}
	if has("time") {
		dst.Time = src.Time
	}
	if has("job_name") {
		dst.JobName = src.JobName
	}
	if has("working_directory") {
		dst.WorkingDirectory = src.WorkingDirectory
	}
	if has("output_path") {
		dst.OutputPath = src.OutputPath
	}
	if has("error_path") {
		dst.ErrorPath = src.ErrorPath
	}
	if has("email") {
		dst.Email = src.Email
	}
	if has("batch_size") {
		dst.BatchSize = src.BatchSize
	}
	if has("submit_command") {
		dst.SubmitCommand = src.SubmitCommand
	}
	if has("extra") {
		dst.Extra = src.Extra
	}
}

// ApplyEnv applies SEQTARGET_* environment overrides
func (c *Config) ApplyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, logDir *string, convention *string, memoize *bool) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if convention != nil {
		c.Convention = *convention
	}
	if memoize != nil {
		c.MemoizeSampleSheets = *memoize
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if _, err := walker.ParseConvention(c.Convention); err != nil {
		return fmt.Errorf("invalid convention: %w", err)
	}

	if c.Job.BatchSize < 0 {
		return fmt.Errorf("job.batch_size must be >= 0, got %d", c.Job.BatchSize)
	}
	if c.Job.Time != "" {
		if _, err := jobs.ConvertTime(c.Job.Time); err != nil {
			return fmt.Errorf("job.time: %w", err)
		}
	}

	return nil
}
