package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Plan     PlanConfig     `yaml:"plan"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
	Timeout  *Duration      `yaml:"timeout,omitempty"` // nil = no deadline
}

// DatabaseConfig holds fixture store settings
type DatabaseConfig struct {
	Path string `yaml:"path"` // ":memory:" for a throwaway store
}

// PlanConfig locates the fixture plan
type PlanConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig controls where the cache snapshot goes
type OutputConfig struct {
	Format string `yaml:"format"`         // json or yaml
	Path   string `yaml:"path,omitempty"` // empty = stdout
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
