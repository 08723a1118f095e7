// Package config loads optional defaults for run-evaluator from a TOML
// file. A missing config file is not an error; explicit command line flags
// always win over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const defaultStartupTimeout = 20 * time.Second

// Config holds the resolvable defaults for an invocation.
type Config struct {
	// Port the chromedriver server listens on.
	Port int `toml:"port"`
	// Driver is a path to an existing chromedriver binary. When set,
	// provisioning is skipped.
	Driver string `toml:"driver"`
	// StartupTimeout is a duration string, e.g. "20s".
	StartupTimeout string `toml:"startup_timeout"`
	// CacheDir overrides where downloaded chromedriver binaries are kept.
	CacheDir string `toml:"cache_dir"`
	// Evaluator is the evaluator binary name or path.
	Evaluator string `toml:"evaluator"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:      4444,
		Evaluator: "mdbook-slide-evaluator",
	}
}

// Load reads the config file at path, falling back to
// ~/.run-evaluator/config.toml when path is empty. File values overlay the
// defaults; a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(home, ".run-evaluator", "config.toml")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// StartupDuration parses StartupTimeout, falling back to the built-in
// default on empty or invalid values.
func (c Config) StartupDuration() time.Duration {
	if c.StartupTimeout == "" {
		return defaultStartupTimeout
	}
	d, err := time.ParseDuration(c.StartupTimeout)
	if err != nil || d <= 0 {
		return defaultStartupTimeout
	}
	return d
}
