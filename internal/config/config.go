// Package config loads the optional procbridge YAML file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultLogLevel    = "info"
	DefaultHistorySize = 16
	FileName           = "config.yaml"
	PresetsFileName    = "presets.yaml"
	dirName            = "procbridge"
)

// Config holds the parsed configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version        int    `yaml:"version"`
	RawTimeout     string `yaml:"timeout"`    // e.g. "30s"; unset means no limit
	RawMaxOutput   int    `yaml:"max_output"` // bytes per stream; unset means unlimited
	RawPresetsFile string `yaml:"presets_file"`
	LogLevel       string `yaml:"log_level"`
	LogJSON        bool   `yaml:"log_json"`
	RawHistorySize int    `yaml:"history_size"`

	// dir is the directory the file was loaded from, or would have been.
	dir string
}

// Timeout returns the configured per-process limit. Zero, the default,
// means a process may run forever.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// MaxOutputBytes returns the per-stream capture cap, or zero for unlimited.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return 0
}

// PresetsPath returns the preset file. Relative paths are resolved against
// the config directory.
func (c *Config) PresetsPath() string {
	p := c.RawPresetsFile
	if p == "" {
		return filepath.Join(c.dir, PresetsFileName)
	}
	if !filepath.IsAbs(p) {
		return filepath.Join(c.dir, p)
	}
	return p
}

// Level returns the configured log level or the default.
func (c *Config) Level() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return DefaultLogLevel
}

// HistorySize returns the number of results kept in memory.
func (c *Config) HistorySize() int {
	if c.RawHistorySize > 0 {
		return c.RawHistorySize
	}
	return DefaultHistorySize
}

// Dir returns the configuration directory.
func (c *Config) Dir() string {
	return c.dir
}

// Validate reports settings that are present but unusable.
func (c *Config) Validate() error {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err != nil {
			return errors.Wrapf(err, "timeout %q", c.RawTimeout)
		}
		if d <= 0 {
			return errors.Newf("timeout %q must be positive", c.RawTimeout)
		}
	}
	if c.RawMaxOutput < 0 {
		return errors.Newf("max_output %d must not be negative", c.RawMaxOutput)
	}
	if c.RawHistorySize < 0 {
		return errors.Newf("history_size %d must not be negative", c.RawHistorySize)
	}
	return nil
}

// DefaultPath returns <user config dir>/procbridge/config.yaml.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locating user config directory")
	}
	return filepath.Join(base, dirName, FileName), nil
}

// Load reads the config file at path, or at DefaultPath when path is
// empty. A missing file yields a default Config.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{dir: filepath.Dir(path)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return cfg, nil
}
