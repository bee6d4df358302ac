package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version" toml:"version"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Canvas   CanvasConfig   `yaml:"canvas" toml:"canvas"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Watch    WatchConfig    `yaml:"watch" toml:"watch"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr         string   `yaml:"addr" toml:"addr" validate:"required"`
	ReadTimeout  Duration `yaml:"read_timeout" toml:"read_timeout" validate:"gt=0"`
	WriteTimeout Duration `yaml:"write_timeout" toml:"write_timeout" validate:"gt=0"`
	IdleTimeout  Duration `yaml:"idle_timeout" toml:"idle_timeout" validate:"gt=0"`
}

// DatabaseConfig holds snapshot database settings
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// CanvasConfig holds drawing-surface settings
type CanvasConfig struct {
	MinSeparation float64 `yaml:"min_separation" toml:"min_separation" validate:"gt=0"`
	MarkerSize    float64 `yaml:"marker_size" toml:"marker_size" validate:"gt=0"`
	Width         int     `yaml:"width" toml:"width" validate:"gt=0,lte=8192"`
	Height        int     `yaml:"height" toml:"height" validate:"gt=0,lte=8192"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	// Path adds a plain-text log file next to the console output
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`
}

// WatchConfig names a topology file to reload on change
type WatchConfig struct {
	Path     string   `yaml:"path,omitempty" toml:"path,omitempty"`
	Debounce Duration `yaml:"debounce,omitempty" toml:"debounce,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the time.Duration value
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
