// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the registry.
//
// Configuration comes from a single YAML file named by the NLPM_CONFIG
// environment variable or a --config flag. There is no search path and
// no automatic discovery; with no file at all, Default() applies.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that points at the config file.
const EnvVar = "NLPM_CONFIG"

// Config is the registry service configuration.
type Config struct {
	// Root is the registry root directory holding registry.db and the
	// store/ blob directory. Defaults to ~/.nlpm.
	Root string `yaml:"root"`

	// PoolSize is the catalog connection pool size. Zero means the
	// catalog default.
	PoolSize int `yaml:"pool_size"`
}

// Default returns the configuration used when no config file is given.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("config: resolving home directory: %w", err)
	}
	return Config{Root: filepath.Join(home, ".nlpm")}, nil
}

// Load reads the config file at path. An empty path falls back to
// NLPM_CONFIG, then to Default(). Fields missing from the file keep
// their defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}

	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Root == "" {
		return Config{}, fmt.Errorf("config: %s: root must not be empty", path)
	}
	return cfg, nil
}
