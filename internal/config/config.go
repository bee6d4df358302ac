// Package config provides configuration management for netcanvas.
//
// Config file locations (priority order):
//  1. $NETCANVAS_CONFIG
//  2. ./netcanvas.yaml
//  3. ~/.config/netcanvas/config.yaml
//  4. /etc/netcanvas/config.yaml
//
// Files ending in .toml are read as TOML, anything else as YAML. Missing
// keys fall back to DefaultConfig values. The result is validated
// before it is returned.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr          = ":3000"
	DefaultDatabasePath  = "./netcanvas.db"
	DefaultMinSeparation = 60
	DefaultMarkerSize    = 40
	DefaultWidth         = 1024
	DefaultHeight        = 768
	DefaultLogLevel      = "info"
	DefaultDebounce      = 500 * time.Millisecond
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path, as TOML when the path ends in
// .toml and YAML otherwise
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if isTOML(path) {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(c)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}

	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}

	if c.Canvas.MinSeparation == 0 {
		c.Canvas.MinSeparation = DefaultMinSeparation
	}
	if c.Canvas.MarkerSize == 0 {
		c.Canvas.MarkerSize = DefaultMarkerSize
	}
	if c.Canvas.Width == 0 {
		c.Canvas.Width = DefaultWidth
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = DefaultHeight
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(DefaultDebounce)
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Server: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Canvas: %dx%d, marker %.0f, separation %.0f\n",
		c.Canvas.Width, c.Canvas.Height, c.Canvas.MarkerSize, c.Canvas.MinSeparation)
	summary += fmt.Sprintf("Log level: %s", c.Log.Level)
	if c.Watch.Path != "" {
		summary += fmt.Sprintf(", watching %s", c.Watch.Path)
	}

	return summary
}
