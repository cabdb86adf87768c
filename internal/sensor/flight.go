package sensor

import "math"

type FlightData struct {
	Time          float64 `yaml:"time" cbor:"time"`
	Distance      float64 `yaml:"distance" cbor:"distance"`
	Altitude      float64 `yaml:"altitude" cbor:"altitude"`
	Airspeed      float64 `yaml:"airspeed" cbor:"airspeed"`
	VerticalSpeed float64 `yaml:"vertical_speed" cbor:"vertical_speed"`
	Roll          float64 `yaml:"roll" cbor:"roll"`
}

// Flight is the air data feed consumed by airframe classes.
type Flight interface {
	Read() FlightData
	Advance(dt float64) FlightData
	SetRotors(throttle float64)
	SetWings(deployment float64)
	SetBank(radians float64)
}

// SimFlight integrates a Glider and perturbs its roll with gusts drawn
// from a Source.
type SimFlight struct {
	glider *Glider
	integ  *RK4
	src    Source
	x      State
	t      float64
}

func NewSimFlight(g *Glider, altitude float64, src Source) *SimFlight {
	if g == nil {
		g = NewGlider()
	}
	x := make(State, g.StateDim())
	x[1] = altitude
	return &SimFlight{glider: g, integ: NewRK4(), src: src, x: x}
}

func (f *SimFlight) Read() FlightData {
	vx, vy := f.x[2], f.x[3]
	return FlightData{
		Time:          f.t,
		Distance:      f.x[0],
		Altitude:      f.x[1],
		Airspeed:      math.Hypot(vx, vy),
		VerticalSpeed: vy,
		Roll:          f.x[4],
	}
}

func (f *SimFlight) Advance(dt float64) FlightData {
	if dt <= 0 {
		return f.Read()
	}
	f.x = f.integ.Step(f.glider, f.x, f.t, dt)
	f.t += dt

	if f.src != nil {
		f.x[5] += Jitter(f.src, 500)
	}

	// Ground contact.
	if f.x[1] < 0 {
		f.x[1] = 0
		if f.x[3] < 0 {
			f.x[3] = 0
		}
	}
	return f.Read()
}

func (f *SimFlight) SetRotors(throttle float64)  { f.glider.Rotors = throttle }
func (f *SimFlight) SetWings(deployment float64) { f.glider.Wings = deployment }
func (f *SimFlight) SetBank(radians float64)     { f.glider.Bank = radians }
