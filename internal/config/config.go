package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dynobj/internal/sensor"
)

const (
	DefaultScenario = "animals"
	DefaultSeed     = 1
	DefaultDataDir  = "data"
	DefaultTheme    = "cyberpunk"
	DefaultTickMs   = 200
)

type Config struct {
	Scenario string `yaml:"scenario" toml:"scenario"`
	Seed     int64  `yaml:"seed" toml:"seed"`
	Capacity int    `yaml:"capacity" toml:"capacity"`
	DataDir  string `yaml:"data_dir" toml:"data_dir"`
	Theme    string `yaml:"theme" toml:"theme"`
	TickMs   int    `yaml:"tick_ms" toml:"tick_ms"`

	// Glider sets parameters of the simulated glider by name.
	Glider map[string]float64 `yaml:"glider,omitempty" toml:"glider,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: DefaultScenario,
		Seed:     DefaultSeed,
		DataDir:  DefaultDataDir,
		Theme:    DefaultTheme,
		TickMs:   DefaultTickMs,
	}
}

func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("%w: capacity %d", ErrInvalid, c.Capacity)
	}
	if c.TickMs <= 0 {
		return fmt.Errorf("%w: tick_ms %d", ErrInvalid, c.TickMs)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: empty data_dir", ErrInvalid)
	}
	known := sensor.NewGlider().GetParams()
	for name, v := range c.Glider {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: unknown glider parameter %q", ErrInvalid, name)
		}
		if v <= 0 {
			return fmt.Errorf("%w: glider %s must be positive, got %g", ErrInvalid, name, v)
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := Decode(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := Encode(path, cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Decode reads path into v. Files ending in .toml are read as TOML,
// everything else as YAML.
func Decode(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isTOML(path) {
		if _, err := toml.Decode(string(data), v); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Encode marshals v in the format implied by the extension of path.
func Encode(path string, v any) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return yaml.Marshal(v)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
