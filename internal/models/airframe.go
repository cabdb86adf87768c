package models

import (
	"fmt"
	"math"

	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/sensor"
)

const defaultStep = 0.1

// hoverThrottle holds altitude on the default glider.
const hoverThrottle = 1 / 1.1

type AirframeData struct {
	Name          string            `yaml:"name" cbor:"name"`
	StartAltitude float64           `yaml:"start_altitude" cbor:"start_altitude"`
	Step          float64           `yaml:"step" cbor:"step"`
	Throttle      float64           `yaml:"throttle" cbor:"throttle"`
	Flight        sensor.FlightData `yaml:"flight" cbor:"flight"`

	flight sensor.Flight
}

func (a *AirframeData) bind(args object.Args) error {
	env, err := envArg(args)
	if err != nil {
		return err
	}
	a.flight = env.Flight
	if a.flight == nil {
		g := sensor.NewGlider()
		for name, v := range env.Glider {
			if err := g.SetParam(name, v); err != nil {
				return fmt.Errorf("%w: %w", object.ErrBadArgument, err)
			}
		}
		a.flight = sensor.NewSimFlight(g, a.StartAltitude, env.Source)
	}
	if a.Step <= 0 {
		a.Step = defaultStep
	}
	a.Flight = a.flight.Read()
	return nil
}

func (a *AirframeData) setThrottle(v float64) {
	a.Throttle = math.Max(0, math.Min(1, v))
	a.flight.SetRotors(a.Throttle)
}

func (a *AirframeData) advance(dt float64) {
	a.Flight = a.flight.Advance(dt)
}

// stepArg returns the integration step passed as argument i, or the
// airframe's default step.
func (a *AirframeData) stepArg(args object.Args, i int) (float64, error) {
	dt, err := args.FloatOr(i, a.Step)
	if err != nil {
		return 0, err
	}
	if dt <= 0 {
		return 0, fmt.Errorf("%w: step must be positive, got %g", object.ErrBadArgument, dt)
	}
	return dt, nil
}

func (a *AirframeData) metrics() Metrics {
	return Metrics{
		"altitude":       a.Flight.Altitude,
		"airspeed":       a.Flight.Airspeed,
		"vertical_speed": a.Flight.VerticalSpeed,
		"roll":           a.Flight.Roll * 180 / math.Pi,
		"distance":       a.Flight.Distance,
		"throttle":       a.Throttle,
	}
}

func (a *AirframeData) flightLine() string {
	return fmt.Sprintf("t=%.1fs alt=%.1fm airspeed=%.1fm/s vs=%.2fm/s roll=%.1f°",
		a.Flight.Time, a.Flight.Altitude, a.Flight.Airspeed, a.Flight.VerticalSpeed, a.Flight.Roll*180/math.Pi)
}

func defineAirframe() (*object.Class, error) {
	return object.DefineRoot[AirframeData]("Airframe").
		Constructor(func(self *object.Instance, p *AirframeData, args object.Args) error {
			return p.bind(args)
		}).
		Method("initialize", func(self *object.Instance, p *AirframeData, args object.Args) (any, error) {
			p.setThrottle(hoverThrottle)
			return fmt.Sprintf("%s flight systems online at %.1f m", p.Name, p.Flight.Altitude), nil
		}, object.Activates()).
		Method("throttle", func(self *object.Instance, p *AirframeData, args object.Args) (any, error) {
			v, err := args.Float(0)
			if err != nil {
				return nil, err
			}
			p.setThrottle(v)
			return fmt.Sprintf("%s rotors at %.0f%%", p.Name, p.Throttle*100), nil
		}, object.RequiresActive()).
		Method("updateFlight", func(self *object.Instance, p *AirframeData, args object.Args) (any, error) {
			dt, err := p.stepArg(args, 0)
			if err != nil {
				return nil, err
			}
			p.advance(dt)
			return fmt.Sprintf("%s %s", p.Name, p.flightLine()), nil
		}, object.RequiresActive()).
		Method("standby", func(self *object.Instance, p *AirframeData, args object.Args) (any, error) {
			p.setThrottle(0)
			return fmt.Sprintf("%s rotors stopped, standing by", p.Name), nil
		}, object.Deactivates()).
		Method("status", func(self *object.Instance, p *AirframeData, args object.Args) (any, error) {
			return fmt.Sprintf("=== Airframe Status ===\nName: %s\nStatus: %s\nFlight: %s",
				p.Name, self.State(), p.flightLine()), nil
		}).
		Method("metrics", func(self *object.Instance, p *AirframeData, args object.Args) (any, error) {
			return p.metrics(), nil
		}).
		Build()
}
