// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for the punchlist server.
type Config struct {
	// ListenAddress is the TCP address the HTTP server binds to.
	// Default: ":8080"
	ListenAddress string `yaml:"listen_address"`

	// DatabasePath is the path of the SQLite database file. The file is
	// created on first start if it does not exist.
	// Default: punchlist.db
	DatabasePath string `yaml:"database_path"`

	// PoolSize is the number of SQLite connections in the pool.
	// Default: 4
	PoolSize int `yaml:"pool_size"`

	// PublicKeyPath is the path of the Ed25519 public key used to
	// verify bearer tokens. Required; there is no default.
	PublicKeyPath string `yaml:"public_key_path"`

	// Audience is the audience claim every accepted token must carry.
	// Default: punchlist
	Audience string `yaml:"audience"`

	// ShutdownTimeout is how long to wait for in-flight requests during
	// shutdown, as a Go duration string.
	// Default: 10s
	ShutdownTimeout string `yaml:"shutdown_timeout"`

	// LogLevel is the minimum log level emitted: debug, info, warn,
	// or error.
	// Default: info
	LogLevel string `yaml:"log_level"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// PublicKeyPath has no default: token verification must never fall back
// to an implicit key.
func Default() *Config {
	return &Config{
		ListenAddress:   ":8080",
		DatabasePath:    "punchlist.db",
		PoolSize:        4,
		PublicKeyPath:   "",
		Audience:        "punchlist",
		ShutdownTimeout: "10s",
		LogLevel:        "info",
	}
}

// Load loads configuration from the PUNCHLIST_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if PUNCHLIST_CONFIG is not set, this
// fails. This ensures deterministic, auditable configuration with no hidden
// overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("PUNCHLIST_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("PUNCHLIST_CONFIG environment variable not set; " +
			"set it to the path of your punchlist.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do
// not override config values - this ensures deterministic, auditable
// configuration. The only expansion performed is ${HOME} and similar path
// variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.DatabasePath = expandVars(c.DatabasePath, vars)
	c.PublicKeyPath = expandVars(c.PublicKeyPath, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// SlogLevel returns LogLevel parsed as a slog.Level. Only meaningful
// after Validate has passed; an unparseable level falls back to Info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ShutdownDuration returns ShutdownTimeout parsed as a duration. Only
// meaningful after Validate has passed; an unparseable value falls
// back to 10 seconds.
func (c *Config) ShutdownDuration() time.Duration {
	duration, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return duration
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddress == "" {
		errs = append(errs, fmt.Errorf("listen_address is required"))
	}

	if c.DatabasePath == "" {
		errs = append(errs, fmt.Errorf("database_path is required"))
	}

	if c.PoolSize <= 0 {
		errs = append(errs, fmt.Errorf("pool_size must be positive, got %d", c.PoolSize))
	}

	if c.PublicKeyPath == "" {
		errs = append(errs, fmt.Errorf("public_key_path is required"))
	}

	if c.Audience == "" {
		errs = append(errs, fmt.Errorf("audience is required"))
	}

	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("shutdown_timeout: %v", err))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %v", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
