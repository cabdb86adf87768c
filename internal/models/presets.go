package models

import "github.com/san-kum/dynobj/internal/sensor"

var burlington = Location{
	Name:        "Burlington, MA",
	Latitude:    42.485884,
	Longitude:   -71.221830,
	Temperature: 25.0,
	Pressure:    101.3,
	Humidity:    50.0,
}

var targetSpectrum = sensor.Spectrum{
	Wavelength: 550.0,
	Intensity:  0.8,
	Noise:      0.01,
	Source:     "Target",
}

var idleSpectrum = sensor.Spectrum{Source: "None"}

var labEnvironment = sensor.Environment{
	Temperature: 25.0,
	Humidity:    50.0,
	Pressure:    101.3,
}

var presets = map[string]map[string]func() any{
	"Animal": {
		"default": func() any { return &AnimalData{Name: "Generic", Age: 3} },
	},
	"Dog": {
		"default": func() any {
			return &DogData{Animal: AnimalData{Name: "Rex", Age: 5}, TailLength: 30}
		},
		"puppy": func() any {
			return &DogData{Animal: AnimalData{Name: "Pip", Age: 0}, TailLength: 8}
		},
	},
	"SpectralAnnealing": {
		"default": func() any {
			return &AnnealingData{
				Name:     "Classic Spectral Annealing",
				Location: burlington,
				Current:  idleSpectrum,
				Target:   targetSpectrum,
				Phase:    "Initializing",
			}
		},
	},
	"QuantumAnnealing": {
		"default": func() any {
			loc := burlington
			loc.Name = "Burlington, MA (Quantum)"
			target := targetSpectrum
			target.Source = "Quantum Target"
			return &QuantumAnnealingData{
				Annealing: AnnealingData{
					Name:     "Quantum Spectral Annealing",
					Location: loc,
					Current:  idleSpectrum,
					Target:   target,
					Phase:    "Quantum Initializing",
				},
				QuantumState: "Superposition",
			}
		},
	},
	"StabilityZone": {
		"default": func() any {
			return &ZoneData{Name: "Classic Stability Zone", Env: labEnvironment, Phase: "Initializing"}
		},
	},
	"QuantumZone": {
		"default": func() any {
			return &QuantumZoneData{
				Zone:         ZoneData{Name: "Quantum Stability Zone", Env: labEnvironment, Phase: "Quantum Initializing"},
				QuantumState: "Superposition",
			}
		},
	},
	"Airframe": {
		"default": func() any { return &AirframeData{Name: "Airframe", StartAltitude: 20, Step: defaultStep} },
	},
	"Glide": {
		"default": func() any {
			return &GlideData{
				Airframe: AirframeData{Name: "Glider", StartAltitude: 160, Step: 0.5},
				Config:   DefaultGlideConfig(),
			}
		},
		"low": func() any {
			cfg := DefaultGlideConfig()
			cfg.MinAltitude = 40
			return &GlideData{
				Airframe: AirframeData{Name: "Low Glider", StartAltitude: 60, Step: 0.5},
				Config:   cfg,
			}
		},
	},
	"WingFlapper": {
		"default": func() any {
			return &FlapperData{Airframe: AirframeData{Name: "Flapper", StartAltitude: 45, Step: 0.5}}
		},
		"vtol": func() any {
			return &FlapperData{Airframe: AirframeData{Name: "Flapper VTOL", StartAltitude: 4, Step: 0.5}}
		},
	},
}
