// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for crmd.
package config

import "gopkg.in/yaml.v3"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// DataDir is the root directory for persistent data (database files).
	// Defaults to the platform data directory when empty.
	DataDir string `yaml:"data_dir,omitempty"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "store.sqlite").
	Modules map[string]yaml.Node `yaml:"modules"`
}
