// Package config loads aicred's global settings.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds global settings from <store>/config.yaml.
type GlobalConfig struct {
	Scan    ScanConfig    `yaml:"scan"`
	Debug   DebugConfig   `yaml:"debug"`
	History HistoryConfig `yaml:"history"`
}

// ScanConfig holds discovery settings.
type ScanConfig struct {
	// MaxFileSize is the largest config file read, in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`
	Parallelism int   `yaml:"parallelism"`
	// Disabled lists scanners skipped unless named explicitly.
	Disabled []string `yaml:"disabled"`
	Keychain bool     `yaml:"keychain"`
}

// DebugConfig holds debug log settings.
type DebugConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// HistoryConfig holds scan history settings.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path defaults to <store>/history.db.
	Path string `yaml:"path"`
}

// DefaultGlobalConfig returns the default global configuration.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Scan: ScanConfig{
			MaxFileSize: 1 << 20,
			Parallelism: 8,
			Keychain:    true,
		},
		Debug: DebugConfig{
			RetentionDays: 7,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// LoadGlobal reads <dir>/config.yaml and applies environment overrides.
// A missing or malformed file leaves the defaults in place.
func LoadGlobal(dir string) (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, "config.yaml")); err == nil {
			_ = yaml.Unmarshal(data, cfg) // Ignore unmarshal errors, use defaults
		}
	}

	if v := os.Getenv("AICRED_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Scan.MaxFileSize = n
		}
	}
	if v := os.Getenv("AICRED_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scan.Parallelism = n
		}
	}
	if envTrue("AICRED_NO_KEYCHAIN") {
		cfg.Scan.Keychain = false
	}
	if envTrue("AICRED_NO_HISTORY") {
		cfg.History.Enabled = false
	}

	if cfg.History.Path == "" && dir != "" {
		cfg.History.Path = filepath.Join(dir, "history.db")
	}
	return cfg, nil
}

func envTrue(name string) bool {
	v := os.Getenv(name)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err != nil || b
}
