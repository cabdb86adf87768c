package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/sensor"
)

// annealingRate is the fraction of the remaining gap closed per calculation.
const annealingRate = 0.1

type Location struct {
	Name        string  `yaml:"name" cbor:"name"`
	Latitude    float64 `yaml:"latitude" cbor:"latitude"`
	Longitude   float64 `yaml:"longitude" cbor:"longitude"`
	Temperature float64 `yaml:"temperature" cbor:"temperature"`
	Pressure    float64 `yaml:"pressure" cbor:"pressure"`
	Humidity    float64 `yaml:"humidity" cbor:"humidity"`
}

type AnnealingData struct {
	Name     string          `yaml:"name" cbor:"name"`
	Location Location        `yaml:"location" cbor:"location"`
	Current  sensor.Spectrum `yaml:"current" cbor:"current"`
	Target   sensor.Spectrum `yaml:"target" cbor:"target"`
	Progress float64         `yaml:"progress" cbor:"progress"`
	Phase    string          `yaml:"phase" cbor:"phase"`

	src sensor.Source
}

type QuantumAnnealingData struct {
	Annealing      AnnealingData `yaml:"annealing" cbor:"annealing"`
	Coherence      float64       `yaml:"coherence" cbor:"coherence"`
	Superpositions int           `yaml:"superpositions" cbor:"superpositions"`
	QuantumState   string        `yaml:"quantum_state" cbor:"quantum_state"`
}

func (q *QuantumAnnealingData) base() *AnnealingData { return &q.Annealing }

func (a *AnnealingData) bind(args object.Args) error {
	env, err := envArg(args)
	if err != nil {
		return err
	}
	a.src = env.Source
	return nil
}

func (a *AnnealingData) metrics() Metrics {
	return Metrics{
		"progress":   a.Progress,
		"wavelength": a.Current.Wavelength,
		"intensity":  a.Current.Intensity,
		"noise":      a.Current.Noise,
		"difference": math.Abs(a.Current.Intensity - a.Target.Intensity),
	}
}

func writeSpectrum(b *strings.Builder, s sensor.Spectrum, qualifiers ...string) {
	q := make([]string, 3)
	copy(q, qualifiers)
	fmt.Fprintf(b, "  Wavelength: %.1f nm%s\n", s.Wavelength, q[0])
	fmt.Fprintf(b, "  Intensity: %.3f%s\n", s.Intensity, q[1])
	fmt.Fprintf(b, "  Noise: %.3f%s\n", s.Noise, q[2])
	fmt.Fprintf(b, "  Source: %s", s.Source)
}

func defineSpectralAnnealing() (*object.Class, error) {
	return object.DefineRoot[AnnealingData]("SpectralAnnealing").
		Constructor(func(self *object.Instance, p *AnnealingData, args object.Args) error {
			return p.bind(args)
		}).
		Method("initializeAnnealing", func(self *object.Instance, p *AnnealingData, args object.Args) (any, error) {
			p.Progress = 0
			p.Phase = "Annealing"
			loc := p.Location
			return fmt.Sprintf("%s is initializing spectral annealing...\n"+
				"Location: %s\n"+
				"Coordinates: %.6f, %.6f\n"+
				"Environmental conditions: %.1f°C, %.1f kPa, %.1f%% humidity",
				p.Name, loc.Name, loc.Latitude, loc.Longitude,
				loc.Temperature, loc.Pressure, loc.Humidity), nil
		}, object.Activates()).
		Method("fetchSpectralData", func(self *object.Instance, p *AnnealingData, args object.Args) (any, error) {
			p.Current = sensor.ReadSpectrum(p.src, "EMIT")
			var b strings.Builder
			fmt.Fprintf(&b, "%s is fetching spectral data...\nCurrent spectral reading:\n", p.Name)
			writeSpectrum(&b, p.Current)
			return b.String(), nil
		}, object.RequiresActive()).
		Method("calculateAnnealing", func(self *object.Instance, p *AnnealingData, args object.Args) (any, error) {
			target, err := args.Float(0)
			if err != nil {
				return nil, err
			}
			p.Progress += (target - p.Progress) * annealingRate
			return fmt.Sprintf("%s is calculating spectral annealing...\n"+
				"Target progress: %.1f%%\n"+
				"Current progress: %.1f%%\n"+
				"Spectral difference: %.3f",
				p.Name, target, p.Progress, math.Abs(p.Current.Intensity-p.Target.Intensity)), nil
		}, object.RequiresActive()).
		Method("reportSpectralStatus", func(self *object.Instance, p *AnnealingData, args object.Args) (any, error) {
			var b strings.Builder
			fmt.Fprintf(&b, "=== Spectral Annealing Status Report ===\n")
			fmt.Fprintf(&b, "Name: %s\nStatus: %s\n", p.Name, self.State())
			fmt.Fprintf(&b, "Location: %s (%.6f, %.6f)\n", p.Location.Name, p.Location.Latitude, p.Location.Longitude)
			fmt.Fprintf(&b, "Current Spectral Data:\n")
			writeSpectrum(&b, p.Current)
			fmt.Fprintf(&b, "\nAnnealing Progress: %.1f%%\nCurrent State: %s", p.Progress, p.Phase)
			return b.String(), nil
		}).
		Method("shutdown", func(self *object.Instance, p *AnnealingData, args object.Args) (any, error) {
			p.Phase = "Idle"
			return fmt.Sprintf("%s is going offline", p.Name), nil
		}, object.Deactivates()).
		Method("metrics", func(self *object.Instance, p *AnnealingData, args object.Args) (any, error) {
			return p.metrics(), nil
		}).
		Build()
}

// defineQuantumAnnealing overrides the four annealing steps and metrics.
// shutdown is inherited.
func defineQuantumAnnealing(parent *object.Class) (*object.Class, error) {
	return object.Define("QuantumAnnealing", parent, (*QuantumAnnealingData).base).
		Constructor(func(self *object.Instance, p *QuantumAnnealingData, args object.Args) error {
			return p.Annealing.bind(args)
		}).
		Method("initializeAnnealing", func(self *object.Instance, p *QuantumAnnealingData, args object.Args) (any, error) {
			p.Annealing.Progress = 0
			p.Annealing.Phase = "Quantum Annealing"
			p.Coherence = 1.0
			return fmt.Sprintf("%s is initializing quantum spectral annealing...\n"+
				"Quantum coherence: %.2f\n"+
				"Quantum state: %s",
				p.Annealing.Name, p.Coherence, p.QuantumState), nil
		}, object.Activates()).
		Method("fetchSpectralData", func(self *object.Instance, p *QuantumAnnealingData, args object.Args) (any, error) {
			a := &p.Annealing
			a.Current = sensor.ReadSpectrum(a.src, "Quantum EMIT")
			p.Coherence += float64(a.src.Intn(100)-50) / 100.0
			p.Superpositions++

			var b strings.Builder
			fmt.Fprintf(&b, "%s is fetching quantum spectral data...\nQuantum spectral reading:\n", a.Name)
			writeSpectrum(&b, a.Current, " (in superposition)", " (quantum-enhanced)", " (quantum-damped)")
			fmt.Fprintf(&b, "\nQuantum coherence: %.2f", p.Coherence)
			return b.String(), nil
		}, object.RequiresActive()).
		Method("calculateAnnealing", func(self *object.Instance, p *QuantumAnnealingData, args object.Args) (any, error) {
			target, err := args.Float(0)
			if err != nil {
				return nil, err
			}
			a := &p.Annealing
			a.Progress += (target - a.Progress) * p.Coherence * annealingRate
			return fmt.Sprintf("%s is calculating quantum spectral annealing...\n"+
				"Target progress: %.1f%%\n"+
				"Quantum-adjusted progress: %.1f%%\n"+
				"Quantum spectral difference: %.3f",
				a.Name, target, a.Progress, math.Abs(a.Current.Intensity-a.Target.Intensity)), nil
		}, object.RequiresActive()).
		Method("reportSpectralStatus", func(self *object.Instance, p *QuantumAnnealingData, args object.Args) (any, error) {
			a := &p.Annealing
			var b strings.Builder
			fmt.Fprintf(&b, "=== Quantum Spectral Annealing Status Report ===\n")
			fmt.Fprintf(&b, "Name: %s\nStatus: %s (in superposition)\n", a.Name, self.State())
			fmt.Fprintf(&b, "Location: %s (%.6f, %.6f)\n", a.Location.Name, a.Location.Latitude, a.Location.Longitude)
			fmt.Fprintf(&b, "Quantum Spectral Data:\n")
			writeSpectrum(&b, a.Current, " (in superposition)", " (quantum-enhanced)", " (quantum-damped)")
			fmt.Fprintf(&b, "\nQuantum Coherence: %.2f\nSuperposition Count: %d\nQuantum State: %s",
				p.Coherence, p.Superpositions, p.QuantumState)
			return b.String(), nil
		}).
		Method("metrics", func(self *object.Instance, p *QuantumAnnealingData, args object.Args) (any, error) {
			m := p.Annealing.metrics()
			m["coherence"] = p.Coherence
			m["superpositions"] = float64(p.Superpositions)
			return m, nil
		}).
		Build()
}
