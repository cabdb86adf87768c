package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != "animals" {
		t.Errorf("expected scenario animals, got %s", cfg.Scenario)
	}
	if cfg.TickMs <= 0 {
		t.Error("tick should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative capacity", func(c *Config) { c.Capacity = -1 }},
		{"zero tick", func(c *Config) { c.TickMs = 0 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"unknown glider parameter", func(c *Config) { c.Glider = map[string]float64{"wingspan": 2} }},
		{"non-positive glider parameter", func(c *Config) { c.Glider = map[string]float64{"mass": 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		file string
		body string
	}{
		{"run.yaml", "scenario: glide\nseed: 9\ncapacity: 16\n"},
		{"run.toml", "scenario = \"glide\"\nseed = 9\ncapacity = 16\n"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if cfg.Scenario != "glide" || cfg.Seed != 9 || cfg.Capacity != 16 {
				t.Errorf("unexpected config %+v", cfg)
			}
			if cfg.Theme != DefaultTheme {
				t.Errorf("unset field should keep its default, got theme %q", cfg.Theme)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("tick_ms: -5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cfg.yaml", "cfg.toml"} {
		path := filepath.Join(dir, name)
		cfg := DefaultConfig()
		cfg.Scenario = "wings"
		cfg.Capacity = 3
		cfg.Glider = map[string]float64{"glide_ratio": 12}

		if err := Save(path, cfg); err != nil {
			t.Fatalf("%s: save failed: %v", name, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load failed: %v", name, err)
		}
		if !reflect.DeepEqual(loaded, cfg) {
			t.Errorf("%s: got %+v, want %+v", name, loaded, cfg)
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("animals", "tight-arena")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Capacity != 2 {
		t.Errorf("expected capacity 2, got %d", cfg.Capacity)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("animals", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "deterministic") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("glide")
	if len(presets) != 3 || presets[0] != "deterministic" || presets[1] != "heavy" {
		t.Errorf("unexpected glide presets %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Apply(GetPreset("glide", "slow-motion"))

	if cfg.Seed != 42 || cfg.TickMs != 500 {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("zero preset field overwrote data dir: %q", cfg.DataDir)
	}
	cfg.Apply(nil)
}

func TestApply_Glider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Glider = map[string]float64{"drag": 0.8, "mass": 2}
	cfg.Apply(GetPreset("glide", "heavy"))

	want := map[string]float64{"drag": 0.8, "mass": 3, "glide_ratio": 10}
	if !reflect.DeepEqual(cfg.Glider, want) {
		t.Errorf("glider = %v, want %v", cfg.Glider, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("heavy preset invalid: %v", err)
	}
	if GetPreset("glide", "heavy").Glider["mass"] != 3 {
		t.Error("Apply modified the preset")
	}
}
