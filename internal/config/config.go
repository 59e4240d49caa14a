// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional YAML configuration file that sets
// default command-line options and custom masking patterns.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings, overridable from the command line
	Defaults struct {
		Checks    string `yaml:"checks"`
		Verbose   bool   `yaml:"verbose"`
		Debug     bool   `yaml:"debug"`
		NoColor   bool   `yaml:"no_color"`
		Recursive bool   `yaml:"recursive"`
	} `yaml:"defaults"`

	// Patterns holds additional user-supplied masking patterns, applied
	// after the built-in ones
	Patterns []PatternConfig `yaml:"patterns"`
}

// PatternConfig is one custom masking pattern from the config file.
type PatternConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// LoadConfig loads configuration from the given path. An empty path returns
// the built-in defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set default values
	config.Defaults.Checks = "all"
	config.Defaults.Verbose = false
	config.Defaults.Debug = false
	config.Defaults.NoColor = false
	config.Defaults.Recursive = false

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	for _, p := range config.Patterns {
		if p.Name == "" {
			return nil, fmt.Errorf("config file %s: custom pattern missing a name", configPath)
		}
		if p.Pattern == "" {
			return nil, fmt.Errorf("config file %s: custom pattern %q missing a pattern", configPath, p.Name)
		}
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations and
// returns the first match, or an empty string if none exists.
func FindConfigFile() string {
	// Check current directory first
	candidates := []string{
		"config.yaml",
		"anonymiser.yaml",
		"anonymiser.yml",
		".docx-anonymiser.yaml",
		".docx-anonymiser.yml",
	}
	for _, name := range candidates {
		if fileExists(name) {
			return name
		}
	}

	// Check the user's home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeConfig := filepath.Join(home, ".docx-anonymiser.yaml")
	if fileExists(homeConfig) {
		return homeConfig
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
