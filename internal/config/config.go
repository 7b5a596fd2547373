// Package config handles Loom configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration structure for Loom.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Timeline settings
	Timeline TimelineConfig `yaml:"timeline" mapstructure:"timeline"`
}

// GlobalConfig contains global Loom settings.
type GlobalConfig struct {
	// DataDir is where Loom stores its data (default: ~/.local/share/loom).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// BusyTimeoutMs is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`
}

// TimelineConfig contains message feed settings.
type TimelineConfig struct {
	// PageSize is how many messages a timeline page holds.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir: filepath.Join(homeDir, ".local", "share", "loom"),
		},
		Database: DatabaseConfig{
			Path:          "", // resolved to DataDir/loom.db
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Timeline: TimelineConfig{
			PageSize: 50,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must not be negative")
	}
	if c.Timeline.PageSize < 1 {
		return fmt.Errorf("timeline.page_size must be at least 1")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console")
	}
	return nil
}

// DatabasePath resolves the database file path, falling back to the data
// directory default.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "loom.db")
}
