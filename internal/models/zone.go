package models

import (
	"fmt"
	"strings"

	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/sensor"
)

const stabilizationRate = 0.1

type ZoneData struct {
	Name      string             `yaml:"name" cbor:"name"`
	Env       sensor.Environment `yaml:"env" cbor:"env"`
	Stability float64            `yaml:"stability" cbor:"stability"`
	Phase     string             `yaml:"phase" cbor:"phase"`

	src sensor.Source
}

type QuantumZoneData struct {
	Zone           ZoneData `yaml:"zone" cbor:"zone"`
	Field          float64  `yaml:"field" cbor:"field"`
	Superpositions int      `yaml:"superpositions" cbor:"superpositions"`
	QuantumState   string   `yaml:"quantum_state" cbor:"quantum_state"`
}

func (q *QuantumZoneData) base() *ZoneData { return &q.Zone }

func (z *ZoneData) bind(args object.Args) error {
	env, err := envArg(args)
	if err != nil {
		return err
	}
	z.src = env.Source
	return nil
}

func (z *ZoneData) metrics() Metrics {
	return Metrics{
		"stability":   z.Stability,
		"temperature": z.Env.Temperature,
		"humidity":    z.Env.Humidity,
		"pressure":    z.Env.Pressure,
		"magnetic":    z.Env.MagneticField,
		"radiation":   z.Env.RadiationLevel,
	}
}

func writeEnvironment(b *strings.Builder, e sensor.Environment) {
	fmt.Fprintf(b, "  Temperature: %.1f°C\n", e.Temperature)
	fmt.Fprintf(b, "  Humidity: %.1f%%\n", e.Humidity)
	fmt.Fprintf(b, "  Pressure: %.1f kPa\n", e.Pressure)
	fmt.Fprintf(b, "  Magnetic Field: %.1f mT\n", e.MagneticField)
	fmt.Fprintf(b, "  Radiation: %.1f mSv", e.RadiationLevel)
}

func defineStabilityZone() (*object.Class, error) {
	return object.DefineRoot[ZoneData]("StabilityZone").
		Constructor(func(self *object.Instance, p *ZoneData, args object.Args) error {
			return p.bind(args)
		}).
		Method("initializeZone", func(self *object.Instance, p *ZoneData, args object.Args) (any, error) {
			p.Stability = 100
			p.Phase = "Stable"
			var b strings.Builder
			fmt.Fprintf(&b, "%s is initializing stability zone...\nEnvironmental conditions:\n", p.Name)
			writeEnvironment(&b, p.Env)
			return b.String(), nil
		}, object.Activates()).
		Method("monitorStability", func(self *object.Instance, p *ZoneData, args object.Args) (any, error) {
			p.Env.Fluctuate(p.src)
			return fmt.Sprintf("%s is monitoring stability...\n"+
				"Current stability score: %.1f\n"+
				"Zone state: %s",
				p.Name, p.Stability, p.Phase), nil
		}, object.RequiresActive()).
		Method("applyStabilization", func(self *object.Instance, p *ZoneData, args object.Args) (any, error) {
			target, err := args.Float(0)
			if err != nil {
				return nil, err
			}
			adjustment := (target - p.Stability) * stabilizationRate
			p.Stability += adjustment
			return fmt.Sprintf("%s is applying stabilization...\n"+
				"Target stability: %.1f\n"+
				"Current stability: %.1f\n"+
				"Adjustment factor: %.2f",
				p.Name, target, p.Stability, adjustment), nil
		}, object.RequiresActive()).
		Method("reportZoneStatus", func(self *object.Instance, p *ZoneData, args object.Args) (any, error) {
			var b strings.Builder
			fmt.Fprintf(&b, "=== Stability Zone Status Report ===\n")
			fmt.Fprintf(&b, "Name: %s\nStatus: %s\nStability Score: %.1f\n", p.Name, self.State(), p.Stability)
			fmt.Fprintf(&b, "Environmental Conditions:\n")
			writeEnvironment(&b, p.Env)
			fmt.Fprintf(&b, "\nCurrent State: %s", p.Phase)
			return b.String(), nil
		}).
		Method("shutdown", func(self *object.Instance, p *ZoneData, args object.Args) (any, error) {
			p.Phase = "Offline"
			return fmt.Sprintf("%s is going offline", p.Name), nil
		}, object.Deactivates()).
		Method("metrics", func(self *object.Instance, p *ZoneData, args object.Args) (any, error) {
			return p.metrics(), nil
		}).
		Build()
}

func defineQuantumZone(parent *object.Class) (*object.Class, error) {
	return object.Define("QuantumZone", parent, (*QuantumZoneData).base).
		Constructor(func(self *object.Instance, p *QuantumZoneData, args object.Args) error {
			return p.Zone.bind(args)
		}).
		Method("initializeZone", func(self *object.Instance, p *QuantumZoneData, args object.Args) (any, error) {
			p.Zone.Stability = 100
			p.Zone.Phase = "Quantum Stable"
			p.Field = 1.0
			return fmt.Sprintf("%s is initializing quantum stability zone...\n"+
				"Quantum field strength: %.2f\n"+
				"Quantum state: %s",
				p.Zone.Name, p.Field, p.QuantumState), nil
		}, object.Activates()).
		Method("monitorStability", func(self *object.Instance, p *QuantumZoneData, args object.Args) (any, error) {
			p.Field += float64(p.Zone.src.Intn(100)-50) / 100.0
			p.Superpositions++
			return fmt.Sprintf("%s is monitoring quantum stability...\n"+
				"Quantum field strength: %.2f\n"+
				"Superposition count: %d\n"+
				"Quantum state: %s",
				p.Zone.Name, p.Field, p.Superpositions, p.QuantumState), nil
		}, object.RequiresActive()).
		Method("applyStabilization", func(self *object.Instance, p *QuantumZoneData, args object.Args) (any, error) {
			target, err := args.Float(0)
			if err != nil {
				return nil, err
			}
			z := &p.Zone
			adjustment := (target - z.Stability) * p.Field * stabilizationRate
			z.Stability += adjustment
			return fmt.Sprintf("%s is applying quantum stabilization...\n"+
				"Target stability: %.1f\n"+
				"Quantum-adjusted stability: %.1f\n"+
				"Quantum adjustment factor: %.2f",
				z.Name, target, z.Stability, adjustment), nil
		}, object.RequiresActive()).
		Method("reportZoneStatus", func(self *object.Instance, p *QuantumZoneData, args object.Args) (any, error) {
			return fmt.Sprintf("=== Quantum Stability Zone Status Report ===\n"+
				"Name: %s\n"+
				"Status: %s (in superposition)\n"+
				"Quantum Stability Score: %.1f\n"+
				"Quantum Field Strength: %.2f\n"+
				"Superposition Count: %d\n"+
				"Quantum State: %s",
				p.Zone.Name, self.State(), p.Zone.Stability, p.Field, p.Superpositions, p.QuantumState), nil
		}).
		Method("metrics", func(self *object.Instance, p *QuantumZoneData, args object.Args) (any, error) {
			m := p.Zone.metrics()
			m["field"] = p.Field
			m["superpositions"] = float64(p.Superpositions)
			return m, nil
		}).
		Build()
}
