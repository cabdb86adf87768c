package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/sensor"
)

// actuatorTick is the control period of the wing and rotor actuators.
const actuatorTick = 0.02

type GlideConfig struct {
	ArmAngle           float64 `yaml:"arm_angle" cbor:"arm_angle"`
	WingSpan           float64 `yaml:"wing_span" cbor:"wing_span"`
	WingChord          float64 `yaml:"wing_chord" cbor:"wing_chord"`
	ArmLength          float64 `yaml:"arm_length" cbor:"arm_length"`
	MinAltitude        float64 `yaml:"min_altitude" cbor:"min_altitude"`
	GlideRatio         float64 `yaml:"glide_ratio" cbor:"glide_ratio"`
	RotorSpinDown      float64 `yaml:"rotor_spin_down" cbor:"rotor_spin_down"`
	BaitToggleInterval float64 `yaml:"bait_toggle_interval" cbor:"bait_toggle_interval"`
}

func DefaultGlideConfig() GlideConfig {
	return GlideConfig{
		ArmAngle:           45.0,
		WingSpan:           2.5,
		WingChord:          0.4,
		ArmLength:          1.2,
		MinAltitude:        100.0,
		GlideRatio:         15.0,
		RotorSpinDown:      2.0,
		BaitToggleInterval: 5.0,
	}
}

type GlideData struct {
	Airframe       AirframeData `yaml:"airframe" cbor:"airframe"`
	Config         GlideConfig  `yaml:"config" cbor:"config"`
	ArmAngle       float64      `yaml:"arm_angle" cbor:"arm_angle"`
	WingDeployment float64      `yaml:"wing_deployment" cbor:"wing_deployment"`
	TargetAltitude float64      `yaml:"target_altitude" cbor:"target_altitude"`
	GlideSpeed     float64      `yaml:"glide_speed" cbor:"glide_speed"`
	RotorsSpinning bool         `yaml:"rotors_spinning" cbor:"rotors_spinning"`
	BaitActive     bool         `yaml:"bait_active" cbor:"bait_active"`
	LastBaitToggle float64      `yaml:"last_bait_toggle" cbor:"last_bait_toggle"`
}

func (g *GlideData) base() *AirframeData { return &g.Airframe }

// GlideSpeed returns the speed whose kinetic energy matches the sink
// height over one glide ratio.
func GlideSpeed(altitude, ratio float64) float64 {
	if altitude <= 0 || ratio <= 0 {
		return 0
	}
	return math.Sqrt(2 * sensor.DefaultGravity * altitude / ratio)
}

func (g *GlideData) deployWings() int {
	ticks := 0
	for math.Abs(g.ArmAngle-g.Config.ArmAngle) > 0.1 {
		g.ArmAngle += (g.Config.ArmAngle - g.ArmAngle) * 0.1
		g.Airframe.advance(actuatorTick)
		ticks++
	}
	for math.Abs(g.WingDeployment-1) > 0.1 {
		g.WingDeployment += (1 - g.WingDeployment) * 0.1
		g.Airframe.flight.SetWings(g.WingDeployment)
		g.Airframe.advance(actuatorTick)
		ticks++
	}
	return ticks
}

func (g *GlideData) spinDown() {
	for t := 0.0; t < g.Config.RotorSpinDown; t += actuatorTick {
		g.Airframe.setThrottle(1 - t/g.Config.RotorSpinDown)
		g.Airframe.advance(actuatorTick)
	}
	g.Airframe.setThrottle(0)
	g.RotorsSpinning = false
}

func (g *GlideData) toggleBait() bool {
	now := g.Airframe.Flight.Time
	if now-g.LastBaitToggle < g.Config.BaitToggleInterval {
		return false
	}
	g.BaitActive = !g.BaitActive
	g.LastBaitToggle = now
	return true
}

func (g *GlideData) calculate() {
	g.GlideSpeed = GlideSpeed(g.Airframe.Flight.Altitude, g.Config.GlideRatio)
	g.TargetAltitude = g.Config.MinAltitude
}

// exitGlide restarts the rotors and retracts the wings.
func (g *GlideData) exitGlide() {
	g.Airframe.setThrottle(1)
	g.RotorsSpinning = true
	g.WingDeployment = 0
	g.Airframe.flight.SetWings(0)
}

func onOff(b bool) string {
	if b {
		return "active"
	}
	return "inactive"
}

// defineGlide inherits updateFlight, throttle and standby from Airframe.
func defineGlide(airframe *object.Class) (*object.Class, error) {
	return object.Define("Glide", airframe, (*GlideData).base).
		Constructor(func(self *object.Instance, p *GlideData, args object.Args) error {
			if err := p.Airframe.bind(args); err != nil {
				return err
			}
			if p.Config == (GlideConfig{}) {
				p.Config = DefaultGlideConfig()
			}
			return nil
		}).
		Method("initialize", func(self *object.Instance, p *GlideData, args object.Args) (any, error) {
			p.ArmAngle = 0
			p.WingDeployment = 0
			p.GlideSpeed = 0
			p.TargetAltitude = p.Config.MinAltitude
			p.RotorsSpinning = true
			p.BaitActive = false
			p.LastBaitToggle = p.Airframe.Flight.Time
			p.Airframe.setThrottle(hoverThrottle)
			return fmt.Sprintf("%s glide system initialized at %.1f m, target altitude %.1f m",
				p.Airframe.Name, p.Airframe.Flight.Altitude, p.TargetAltitude), nil
		}, object.Activates()).
		Method("deployWings", func(self *object.Instance, p *GlideData, args object.Args) (any, error) {
			ticks := p.deployWings()
			return fmt.Sprintf("%s arms at %.1f°, wings %.0f%% deployed after %d ticks",
				p.Airframe.Name, p.ArmAngle, p.WingDeployment*100, ticks), nil
		}, object.RequiresActive()).
		Method("spinDownRotors", func(self *object.Instance, p *GlideData, args object.Args) (any, error) {
			if !p.RotorsSpinning {
				return fmt.Sprintf("%s rotors already stopped", p.Airframe.Name), nil
			}
			p.spinDown()
			return fmt.Sprintf("%s rotors spun down over %.1f s, %s",
				p.Airframe.Name, p.Config.RotorSpinDown, p.Airframe.flightLine()), nil
		}, object.RequiresActive()).
		Method("toggleBait", func(self *object.Instance, p *GlideData, args object.Args) (any, error) {
			if !p.toggleBait() {
				return fmt.Sprintf("%s bait %s", p.Airframe.Name, onOff(p.BaitActive)), nil
			}
			return fmt.Sprintf("%s bait toggled %s", p.Airframe.Name, onOff(p.BaitActive)), nil
		}, object.RequiresActive()).
		Method("calculateGlide", func(self *object.Instance, p *GlideData, args object.Args) (any, error) {
			p.calculate()
			return fmt.Sprintf("%s glide speed %.2f m/s at %.1f m",
				p.Airframe.Name, p.GlideSpeed, p.Airframe.Flight.Altitude), nil
		}, object.RequiresActive()).
		Method("glideStep", func(self *object.Instance, p *GlideData, args object.Args) (any, error) {
			dt, err := p.Airframe.stepArg(args, 0)
			if err != nil {
				return nil, err
			}
			p.Airframe.advance(dt)
			if p.RotorsSpinning {
				return fmt.Sprintf("%s powered flight, %s", p.Airframe.Name, p.Airframe.flightLine()), nil
			}
			if p.Airframe.Flight.Altitude < p.Config.MinAltitude*0.5 {
				p.exitGlide()
				return fmt.Sprintf("%s below %.1f m, exiting glide: rotors restarted, wings retracted",
					p.Airframe.Name, p.Config.MinAltitude*0.5), nil
			}
			toggled := p.toggleBait()
			p.calculate()
			line := fmt.Sprintf("%s gliding %s, glide speed %.2f m/s", p.Airframe.Name, p.Airframe.flightLine(), p.GlideSpeed)
			if toggled {
				line += ", bait " + onOff(p.BaitActive)
			}
			return line, nil
		}, object.RequiresActive()).
		Method("status", func(self *object.Instance, p *GlideData, args object.Args) (any, error) {
			var b strings.Builder
			fmt.Fprintf(&b, "=== Glide Status ===\n")
			fmt.Fprintf(&b, "Name: %s\nStatus: %s\n", p.Airframe.Name, self.State())
			fmt.Fprintf(&b, "Flight: %s\n", p.Airframe.flightLine())
			fmt.Fprintf(&b, "Arm Angle: %.1f°\nWing Deployment: %.0f%%\n", p.ArmAngle, p.WingDeployment*100)
			fmt.Fprintf(&b, "Rotors: %s\nBait: %s\n", onOff(p.RotorsSpinning), onOff(p.BaitActive))
			fmt.Fprintf(&b, "Glide Speed: %.2f m/s\nTarget Altitude: %.1f m", p.GlideSpeed, p.TargetAltitude)
			return b.String(), nil
		}).
		Method("metrics", func(self *object.Instance, p *GlideData, args object.Args) (any, error) {
			m := p.Airframe.metrics()
			m["glide_speed"] = p.GlideSpeed
			m["wing_deployment"] = p.WingDeployment
			m["arm_angle"] = p.ArmAngle
			m["bait_active"] = boolMetric(p.BaitActive)
			m["rotors_spinning"] = boolMetric(p.RotorsSpinning)
			return m, nil
		}).
		Build()
}
