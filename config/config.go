// Package config loads the declarative scan configuration. A missing or
// malformed document is never fatal: the loader falls back to defaults and
// reports the problem as a warning for the caller to log.
package config

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the recognized configuration surface.
type Config struct {
	Scanners ScannerConfig  `yaml:"scanners"`
	Scan     ScanConfig     `yaml:"scan"`
	Renderer RendererConfig `yaml:"renderer"`
}

// ScannerConfig selects the effective scanner set.
type ScannerConfig struct {
	// Groups lists scanner group names to enable. Empty means all groups.
	Groups []string `yaml:"groups"`
	// Enabled lists extra scanner IDs enabled on top of the groups.
	Enabled []string `yaml:"enabled"`
	// Disabled lists scanner IDs excluded even when a group enables them.
	Disabled []string `yaml:"disabled"`
}

// ScanConfig controls discovery.
type ScanConfig struct {
	Root     string   `yaml:"root"`
	Excludes []string `yaml:"excludes"`
	Workers  int      `yaml:"workers"`
}

// RendererConfig is passed through opaquely to renderer collaborators.
type RendererConfig struct {
	Settings map[string]string `yaml:"settings"`
}

// Default returns the configuration equivalent to "all groups enabled, no
// excludes".
func Default() *Config {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	return &Config{
		Scan: ScanConfig{Root: ".", Workers: workers},
	}
}

// Load reads a YAML configuration document. The returned warning is non-nil
// when the document was missing or malformed and defaults were substituted;
// it is never an error.
func Load(path string) (cfg *Config, warning error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), err
	}
	return Parse(data)
}

// Parse decodes a YAML configuration document, applying defaults for any
// unset field.
func Parse(data []byte) (cfg *Config, warning error) {
	cfg = Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), err
	}
	if cfg.Scan.Root == "" {
		cfg.Scan.Root = "."
	}
	if cfg.Scan.Workers <= 0 {
		cfg.Scan.Workers = Default().Scan.Workers
	}
	return cfg, nil
}
