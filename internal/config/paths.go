package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "REPOCACHE_CONFIG"
	// ConfigFileName is the config file name looked up in the working directory
	ConfigFileName = "repocache.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "repocache"
)

// searchPaths lists config candidates in priority order
func searchPaths() []string {
	var paths []string
	if path := os.Getenv(EnvConfigPath); path != "" {
		paths = append(paths, path)
	}
	paths = append(paths, ConfigFileName)
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing config file from:
// 1. $REPOCACHE_CONFIG (explicit path)
// 2. ./repocache.yaml (working directory)
// 3. $XDG_CONFIG_HOME/repocache/config.yaml
// 4. ~/.config/repocache/config.yaml
// 5. /etc/repocache/config.yaml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	for _, path := range searchPaths() {
		if !fileExists(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
