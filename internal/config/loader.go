package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".spotcrawler"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadFile applies settings from a YAML file on top of cfg. Zero-valued
// fields in the file leave the existing values untouched, so the file only
// needs to name the settings it overrides.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	if file.RootDir != "" {
		cfg.RootDir = file.RootDir
	}
	if file.Origin != "" {
		cfg.Origin = file.Origin
	}
	if file.SeedPage != "" {
		cfg.SeedPage = file.SeedPage
	}
	if file.BatchSize != 0 {
		cfg.BatchSize = file.BatchSize
	}
	if file.Concurrency != 0 {
		cfg.Concurrency = file.Concurrency
	}
	if file.Timeout != 0 {
		cfg.Timeout = file.Timeout
	}
	if file.TransientPause != 0 {
		cfg.TransientPause = file.TransientPause
	}
	if file.IdlePause != 0 {
		cfg.IdlePause = file.IdlePause
	}
	if file.UserAgent != "" {
		cfg.UserAgent = file.UserAgent
	}
	if file.MaxBodySize != 0 {
		cfg.MaxBodySize = file.MaxBodySize
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .spotcrawler in the current directory
//  3. Look for .spotcrawler in the XDG config directory
//
// Returns the path to the configuration file, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		path := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	path := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
