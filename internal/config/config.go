// Package config provides configuration management for repocache.
//
// Config file locations (priority order):
//  1. $REPOCACHE_CONFIG
//  2. ./repocache.yaml
//  3. $XDG_CONFIG_HOME/repocache/config.yaml
//  4. ~/.config/repocache/config.yaml
//  5. /etc/repocache/config.yaml
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns defaults for a throwaway fixture run
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Database: DatabaseConfig{Path: ":memory:"},
		Plan:     PlanConfig{Path: "./fixtures.yaml"},
		Output:   OutputConfig{Format: "json"},
		Log:      LogConfig{Level: "info"},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Version == 0 {
		c.Version = d.Version
	}
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.Plan.Path == "" {
		c.Plan.Path = d.Plan.Path
	}
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("output.format %q: want json or yaml", c.Output.Format)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Timeout != nil && c.Timeout.Duration() <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// ParseLevel converts a log level name to a slog.Level
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", level, err)
	}
	return l, nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Database: %s, Plan: %s\n", c.Database.Path, c.Plan.Path)
	out := c.Output.Path
	if out == "" {
		out = "stdout"
	}
	summary += fmt.Sprintf("Output: %s (%s), Log: %s", out, c.Output.Format, c.Log.Level)
	if c.Timeout != nil {
		summary += fmt.Sprintf(", Timeout: %s", c.Timeout.Duration())
	}
	return summary
}
