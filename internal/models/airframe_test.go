package models

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/sensor"
)

// calm has no gusts.
var calm = sensor.Constant(50)

func TestGlideSpeed(t *testing.T) {
	tests := []struct {
		altitude, ratio, want float64
	}{
		{150, 15, math.Sqrt(2 * 9.81 * 10)},
		{0, 15, 0},
		{-5, 15, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := GlideSpeed(tt.altitude, tt.ratio); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("GlideSpeed(%g, %g) = %f, want %f", tt.altitude, tt.ratio, got, tt.want)
		}
	}
}

func TestGlide(t *testing.T) {
	reg, cat := install(t)
	g := create(t, reg, cat.Glide, "", &Env{Source: calm})

	send(t, reg, g, "initialize")
	send(t, reg, g, "deployWings")

	p, _ := object.PayloadOf[GlideData](g)
	if math.Abs(p.ArmAngle-45) > 0.1 {
		t.Errorf("arm angle = %f, want ~45", p.ArmAngle)
	}
	if p.WingDeployment < 0.9 {
		t.Errorf("wing deployment = %f, want >= 0.9", p.WingDeployment)
	}

	send(t, reg, g, "spinDownRotors")
	if p.RotorsSpinning || p.Airframe.Throttle != 0 {
		t.Fatalf("rotors still running: spinning=%v throttle=%f", p.RotorsSpinning, p.Airframe.Throttle)
	}
	if out := send(t, reg, g, "spinDownRotors"); !strings.Contains(out, "already stopped") {
		t.Errorf("second spin down = %q", out)
	}

	toggles := 0
	exited := false
	for i := 0; i < 1000 && !exited; i++ {
		before := p.BaitActive
		out := send(t, reg, g, "glideStep")
		if p.BaitActive != before {
			toggles++
		}
		exited = strings.Contains(out, "exiting glide")
	}
	if !exited {
		t.Fatalf("glider never left glide mode, altitude %f", p.Airframe.Flight.Altitude)
	}
	if p.Airframe.Flight.Altitude >= p.Config.MinAltitude*0.5 {
		t.Errorf("exited glide at %f m", p.Airframe.Flight.Altitude)
	}
	if !p.RotorsSpinning || p.WingDeployment != 0 {
		t.Error("exit should restart rotors and retract wings")
	}
	if toggles == 0 {
		t.Error("bait never toggled during the glide")
	}
	if p.GlideSpeed <= 0 {
		t.Error("glide speed was never calculated")
	}

	// updateFlight is inherited from Airframe.
	before := p.Airframe.Flight.Time
	send(t, reg, g, "updateFlight", 1.0)
	if math.Abs(p.Airframe.Flight.Time-before-1) > 1e-9 {
		t.Errorf("updateFlight advanced %f s, want 1", p.Airframe.Flight.Time-before)
	}
}

func TestGlide_BadStep(t *testing.T) {
	reg, cat := install(t)
	g := create(t, reg, cat.Glide, "", &Env{Source: calm})
	send(t, reg, g, "initialize")

	if _, err := reg.Send(g, "glideStep", -1.0); err == nil {
		t.Error("expected an error for a negative step")
	}
}

func TestWingFlapper_BaitDrop(t *testing.T) {
	reg, cat := install(t)
	f := create(t, reg, cat.WingFlapper, "", &Env{Source: calm})
	p, _ := object.PayloadOf[FlapperData](f)

	if p.baitRemaining() != BaitDropSections {
		t.Fatalf("expected %d loaded sections, got %d", BaitDropSections, p.baitRemaining())
	}

	send(t, reg, f, "initialize")
	if p.mode() != "cruise" {
		t.Fatalf("expected cruise at 45 m, got %s", p.mode())
	}
	send(t, reg, f, "armBaitDrop")

	released := false
	for i := 0; i < 400 && !released; i++ {
		send(t, reg, f, "controlStep")
		if p.BaitDrop && p.baitRemaining() > 0 {
			for _, s := range p.Sections {
				want := 0.0
				if s.HasBaitDrop && !s.BaitReleased {
					want = 20
				}
				if s.FlapAngle != want {
					t.Fatalf("section %d flap %f in bait drop, want %f", s.ID, s.FlapAngle, want)
				}
			}
		}
		released = p.baitRemaining() == 0
	}
	if !released {
		t.Fatalf("bait never released, altitude %f airspeed %f", p.Airframe.Flight.Altitude, p.Airframe.Flight.Airspeed)
	}
	if p.Airframe.Flight.Altitude > BaitDropAltitude {
		t.Errorf("released above %f m: %f", BaitDropAltitude, p.Airframe.Flight.Altitude)
	}
	for _, s := range p.Sections[:BaitDropSections] {
		if s.BaitLoad != 0 {
			t.Errorf("section %d still has load %f", s.ID, s.BaitLoad)
		}
	}

	send(t, reg, f, "controlStep")
	if !p.VTOL {
		t.Error("expected VTOL once the bait is gone below the VTOL altitude")
	}
}

func TestWingFlapper_VTOL(t *testing.T) {
	reg, cat := install(t)
	f := create(t, reg, cat.WingFlapper, "vtol", &Env{Source: calm})
	p, _ := object.PayloadOf[FlapperData](f)

	send(t, reg, f, "initialize")
	if !p.VTOL {
		t.Fatal("expected VTOL at 4 m")
	}
	if out := send(t, reg, f, "armBaitDrop"); !strings.Contains(out, "cannot arm") {
		t.Errorf("armBaitDrop in VTOL = %q", out)
	}
	for _, s := range p.Sections {
		if s.FlapAngle != 45 || s.PocketDepth != 0.15 {
			t.Fatalf("section %d not in descent config: %+v", s.ID, s)
		}
	}

	// throttle is inherited from Airframe.
	send(t, reg, f, "throttle", 1.0)
	send(t, reg, f, "controlStep")
	if p.Airframe.Flight.VerticalSpeed <= 0 {
		t.Fatalf("expected climb at full throttle, vs %f", p.Airframe.Flight.VerticalSpeed)
	}
	for _, s := range p.Sections {
		if s.FlapAngle != -30 || s.VentOpen != 0.3 {
			t.Fatalf("section %d not in ascent config: %+v", s.ID, s)
		}
	}

	send(t, reg, f, "standby")
	if f.State() != object.Inactive || p.Airframe.Throttle != 0 {
		t.Errorf("standby left state %s throttle %f", f.State(), p.Airframe.Throttle)
	}
}

type fakeFlight struct {
	data sensor.FlightData
	bank float64
}

func (f *fakeFlight) Read() sensor.FlightData              { return f.data }
func (f *fakeFlight) Advance(dt float64) sensor.FlightData { f.data.Time += dt; return f.data }
func (f *fakeFlight) SetRotors(float64)                    {}
func (f *fakeFlight) SetWings(float64)                     {}
func (f *fakeFlight) SetBank(r float64)                    { f.bank = r }

func TestWingFlapper_BankCorrection(t *testing.T) {
	reg, cat := install(t)
	flight := &fakeFlight{
		data: sensor.FlightData{Altitude: 30, Roll: 40 * math.Pi / 180},
		bank: 1,
	}
	f := create(t, reg, cat.WingFlapper, "", &Env{Source: calm, Flight: flight})
	p, _ := object.PayloadOf[FlapperData](f)

	send(t, reg, f, "initialize")
	send(t, reg, f, "updateMode")
	if p.Corrections != 2 {
		t.Errorf("expected 2 corrections, got %d", p.Corrections)
	}
	if flight.bank != 0 {
		t.Errorf("bank not levelled: %f", flight.bank)
	}

	status := send(t, reg, f, "status")
	if !strings.Contains(status, "Attitude corrections: 2") || strings.Count(status, "Section") != NumSections {
		t.Errorf("unexpected status:\n%s", status)
	}
}

func TestAirframe_GliderParams(t *testing.T) {
	reg, cat := install(t)

	fall := func(env *Env) float64 {
		a := create(t, reg, cat.Airframe, "", env)
		p, _ := object.PayloadOf[AirframeData](a)
		start := p.Flight.Altitude
		send(t, reg, a, "initialize")
		send(t, reg, a, "throttle", 0.0)
		send(t, reg, a, "updateFlight", 1.0)
		return start - p.Flight.Altitude
	}

	if drop := fall(&Env{Source: calm}); drop <= 0 {
		t.Fatalf("default glider should fall without rotors, dropped %f m", drop)
	}
	if drop := fall(&Env{Source: calm, Glider: map[string]float64{"gravity": 0}}); math.Abs(drop) > 1e-9 {
		t.Errorf("weightless glider dropped %f m", drop)
	}

	payload, _ := NewPayload("Airframe", "")
	_, err := reg.Create(cat.Airframe, payload, &Env{Source: calm, Glider: map[string]float64{"wingspan": 2}})
	if !errors.Is(err, object.ErrBadArgument) || !errors.Is(err, object.ErrConstruct) {
		t.Errorf("unknown glider parameter: got %v", err)
	}
}
