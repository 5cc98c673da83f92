// Package config loads the cudamm configuration file
// (~/.config/cudamm/config.yaml).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds defaults applied when the matching CLI flag was not set.
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	Kernel string `yaml:"kernel"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Bench
	BenchRuns   *int64 `yaml:"bench_runs"`
	BenchWarmup *int64 `yaml:"bench_warmup"`
	Seed        *int64 `yaml:"seed"`

	// Server
	ServerAddress string         `yaml:"server_address"`
	ReadTimeout   *time.Duration `yaml:"read_timeout"`
}

// Path returns the default config file location, or "" if the user config
// directory cannot be determined.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cudamm", "config.yaml")
}

// Load reads the config at path. A missing file yields a zero Config; a file
// that exists but does not parse is an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
