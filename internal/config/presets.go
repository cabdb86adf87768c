package config

import "sort"

// Presets holds named overrides per scenario. Zero fields keep the value
// of the configuration they are applied to.
var Presets = map[string]map[string]*Config{
	"animals": {
		"deterministic": {Seed: 42},
		"tight-arena":   {Capacity: 2},
	},
	"annealing": {
		"deterministic": {Seed: 42},
		"replay":        {Seed: 7},
	},
	"zones": {
		"deterministic": {Seed: 42},
		"turbulent":     {Seed: 1337},
	},
	"glide": {
		"deterministic": {Seed: 42},
		"slow-motion":   {Seed: 42, TickMs: 500},
		"heavy":         {Glider: map[string]float64{"mass": 3, "glide_ratio": 10}},
	},
	"wings": {
		"deterministic": {Seed: 42},
		"fast":          {TickMs: 50},
	},
}

func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies the non-zero fields of preset onto c.
func (c *Config) Apply(preset *Config) {
	if preset == nil {
		return
	}
	if preset.Scenario != "" {
		c.Scenario = preset.Scenario
	}
	if preset.Seed != 0 {
		c.Seed = preset.Seed
	}
	if preset.Capacity != 0 {
		c.Capacity = preset.Capacity
	}
	if preset.DataDir != "" {
		c.DataDir = preset.DataDir
	}
	if preset.Theme != "" {
		c.Theme = preset.Theme
	}
	if preset.TickMs != 0 {
		c.TickMs = preset.TickMs
	}
	for name, v := range preset.Glider {
		if c.Glider == nil {
			c.Glider = make(map[string]float64)
		}
		c.Glider[name] = v
	}
}
