// Package config loads runner configuration from a YAML file and merges it
// with defaults and CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up relative to a directory.
const DefaultFileName = ".rspec.yaml"

// Config represents runner configuration options.
type Config struct {
	// DryRun starts and finishes every example without running hooks,
	// bodies, or the mock lifecycle.
	DryRun bool `yaml:"dry_run"`

	// Color controls console coloring: auto, always, or never.
	Color string `yaml:"color"`

	// ReportPath, when set, writes a JSON report of the run to this file.
	ReportPath string `yaml:"report_path"`

	// HTMLReportPath, when set, writes an HTML report of the run to this
	// file.
	HTMLReportPath string `yaml:"html_report_path"`

	// ExpectMatcherDescriptions enables generated descriptions for examples
	// declared without a doc string.
	ExpectMatcherDescriptions bool `yaml:"expect_matcher_descriptions"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		DryRun:                    false,
		Color:                     "auto",
		ExpectMatcherDescriptions: true,
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromDir loads configuration from .rspec.yaml in the specified
// directory, falling back to defaults when absent.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DefaultFileName))
}

// Validate checks field values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.Color {
	case "", "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("invalid color mode %q: must be auto, always, or never", c.Color)
	}
}

// FormatDescription normalizes a generated description: collapses interior
// whitespace and trims the ends, so matcher-generated text reads like a doc
// string.
func (c *Config) FormatDescription(description string) string {
	return strings.Join(strings.Fields(description), " ")
}
