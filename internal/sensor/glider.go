package sensor

import (
	"fmt"
	"math"
)

const (
	DefaultGravity = 9.81
	DefaultMass    = 1.5
)

// Glider is a point-mass airframe with rotors for vertical lift and wings
// for gliding. State layout: x, altitude, vx, vy, roll, roll rate.
type Glider struct {
	Mass, Gravity, DragCoeff float64
	GlideRatio               float64
	RollStiffness, RollDamp  float64

	// Rotors and Wings are throttle and deployment fractions in [0, 1].
	Rotors, Wings float64
	Bank          float64
}

func NewGlider() *Glider {
	return &Glider{
		Mass:          DefaultMass,
		Gravity:       DefaultGravity,
		DragCoeff:     0.5,
		GlideRatio:    15,
		RollStiffness: 4,
		RollDamp:      1.5,
	}
}

func (g *Glider) StateDim() int { return 6 }

func (g *Glider) Derive(x State, t float64) State {
	vx, vy := x[2], x[3]
	roll, rollRate := x[4], x[5]

	rotors := clamp01(g.Rotors)
	wings := clamp01(g.Wings)
	weight := g.Mass * g.Gravity

	// Full rotor throttle gives a 10% climb margin over hover.
	thrust := rotors * weight * 1.1
	lift := wings * weight * (1 - 1/g.GlideRatio)
	forward := wings * weight * 0.2 * math.Cos(roll)

	ax := (forward - g.DragCoeff*vx) / g.Mass
	ay := (thrust + lift - weight - g.DragCoeff*vy) / g.Mass
	alpha := -g.RollStiffness*(roll-g.Bank) - g.RollDamp*rollRate

	return State{vx, vy, ax, ay, rollRate, alpha}
}

func (g *Glider) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":        g.Mass,
		"gravity":     g.Gravity,
		"drag":        g.DragCoeff,
		"glide_ratio": g.GlideRatio,
	}
}

func (g *Glider) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		g.Mass = value
	case "gravity":
		g.Gravity = value
	case "drag":
		g.DragCoeff = value
	case "glide_ratio":
		g.GlideRatio = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
