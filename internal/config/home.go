package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// HomeDirName is the per-project settings directory
	HomeDirName = ".seqtarget"
	// ConfigFileName is the config file inside the home directory
	ConfigFileName = "config.yaml"

	EnvHome     = "SEQTARGET_HOME"
	EnvConfig   = "SEQTARGET_CONFIG"
	EnvLogLevel = "SEQTARGET_LOG_LEVEL"
)

// LoadDotEnv loads KEY=value pairs from the given .env files (default
// ./.env) into the environment. Missing files are ignored and variables
// that are already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// GetHome returns the seqtarget home directory
// Priority order:
//  1. SEQTARGET_HOME environment variable (if set)
//  2. .seqtarget in the current working directory
//
// The directory is not created.
func GetHome() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return filepath.Join(cwd, HomeDirName), nil
}

// ConfigPath returns the config file to load: SEQTARGET_CONFIG if set,
// otherwise config.yaml in the home directory.
func ConfigPath() (string, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return path, nil
	}
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// Load reads the config at path, or at ConfigPath when path is empty, and
// applies environment overrides. Validation is left to the caller so that
// command-line flags can be merged first.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}
