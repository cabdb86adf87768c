package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dynobj/internal/object"
)

const (
	NumSections      = 8
	BaitDropSections = 4

	CruiseAltitude   = 50.0
	VTOLAltitude     = 10.0
	BaitDropAltitude = 5.0
	MaxBankAngle     = 30.0
	MinAirspeed      = 5.0
)

type WingSection struct {
	ID           int     `yaml:"id" cbor:"id"`
	FlapAngle    float64 `yaml:"flap_angle" cbor:"flap_angle"`
	VentOpen     float64 `yaml:"vent_open" cbor:"vent_open"`
	PocketDepth  float64 `yaml:"pocket_depth" cbor:"pocket_depth"`
	HasBaitDrop  bool    `yaml:"has_bait_drop" cbor:"has_bait_drop"`
	BaitLoad     float64 `yaml:"bait_load" cbor:"bait_load"`
	BaitReleased bool    `yaml:"bait_released" cbor:"bait_released"`
}

func (s *WingSection) set(flap, vent, pocket float64) {
	s.FlapAngle, s.VentOpen, s.PocketDepth = flap, vent, pocket
}

type FlapperData struct {
	Airframe    AirframeData             `yaml:"airframe" cbor:"airframe"`
	Sections    [NumSections]WingSection `yaml:"sections" cbor:"sections"`
	VTOL        bool                     `yaml:"vtol" cbor:"vtol"`
	BaitDrop    bool                     `yaml:"bait_drop" cbor:"bait_drop"`
	Corrections int                      `yaml:"corrections" cbor:"corrections"`
}

func (f *FlapperData) base() *AirframeData { return &f.Airframe }

func (f *FlapperData) resetSections() {
	for i := range f.Sections {
		s := &f.Sections[i]
		*s = WingSection{ID: i, HasBaitDrop: i < BaitDropSections}
		if s.HasBaitDrop {
			s.BaitLoad = 1.0
		}
	}
}

func (f *FlapperData) baitRemaining() int {
	n := 0
	for _, s := range f.Sections {
		if s.HasBaitDrop && !s.BaitReleased {
			n++
		}
	}
	return n
}

func (f *FlapperData) mode() string {
	switch {
	case f.VTOL:
		return "VTOL"
	case f.BaitDrop:
		return "bait drop"
	}
	return "cruise"
}

// updateMode switches to VTOL below VTOLAltitude and back to cruise above
// CruiseAltitude. An armed bait drop holds off VTOL until every section
// has released. Bank beyond MaxBankAngle is corrected to level.
func (f *FlapperData) updateMode() {
	alt := f.Airframe.Flight.Altitude
	switch {
	case alt < VTOLAltitude && !(f.BaitDrop && f.baitRemaining() > 0):
		f.VTOL, f.BaitDrop = true, false
	case alt > CruiseAltitude:
		f.VTOL, f.BaitDrop = false, false
	}

	if math.Abs(f.Airframe.Flight.Roll*180/math.Pi) > MaxBankAngle {
		f.Airframe.flight.SetBank(0)
		f.Corrections++
	}
}

func (f *FlapperData) configureWings() {
	switch {
	case f.VTOL:
		ascending := f.Airframe.Flight.VerticalSpeed > 0
		for i := range f.Sections {
			if ascending {
				f.Sections[i].set(-30, 0.3, 0)
			} else {
				f.Sections[i].set(45, 0, 0.15)
			}
		}
		f.Airframe.flight.SetWings(0)
	case f.BaitDrop:
		for i := range f.Sections {
			s := &f.Sections[i]
			if s.HasBaitDrop && !s.BaitReleased {
				s.set(20, 0, 0)
			} else {
				s.set(0, 0, 0)
			}
		}
		f.Airframe.flight.SetWings(1)
	default:
		for i := range f.Sections {
			f.Sections[i].set(0, 0, 0)
		}
		f.Airframe.flight.SetWings(1)
	}
}

// dropBait releases every loaded section once the airframe is low and fast
// enough. It returns the number of sections released.
func (f *FlapperData) dropBait() int {
	if !f.BaitDrop {
		return 0
	}
	if f.Airframe.Flight.Altitude > BaitDropAltitude || f.Airframe.Flight.Airspeed < MinAirspeed {
		return 0
	}
	released := 0
	for i := range f.Sections {
		s := &f.Sections[i]
		if s.HasBaitDrop && !s.BaitReleased {
			s.BaitReleased = true
			s.BaitLoad = 0
			released++
		}
	}
	return released
}

func (f *FlapperData) meanFlap() float64 {
	sum := 0.0
	for _, s := range f.Sections {
		sum += s.FlapAngle
	}
	return sum / NumSections
}

// defineWingFlapper inherits updateFlight, throttle and standby from Airframe.
func defineWingFlapper(airframe *object.Class) (*object.Class, error) {
	return object.Define("WingFlapper", airframe, (*FlapperData).base).
		Constructor(func(self *object.Instance, p *FlapperData, args object.Args) error {
			if err := p.Airframe.bind(args); err != nil {
				return err
			}
			p.resetSections()
			return nil
		}).
		Method("initialize", func(self *object.Instance, p *FlapperData, args object.Args) (any, error) {
			p.VTOL, p.BaitDrop = false, false
			p.updateMode()
			p.configureWings()
			return fmt.Sprintf("%s wing control online: %d sections, %d with bait, %s mode at %.1f m",
				p.Airframe.Name, NumSections, p.baitRemaining(), p.mode(), p.Airframe.Flight.Altitude), nil
		}, object.Activates()).
		Method("updateMode", func(self *object.Instance, p *FlapperData, args object.Args) (any, error) {
			p.updateMode()
			return fmt.Sprintf("%s %s mode at %.1f m", p.Airframe.Name, p.mode(), p.Airframe.Flight.Altitude), nil
		}, object.RequiresActive()).
		Method("configureWings", func(self *object.Instance, p *FlapperData, args object.Args) (any, error) {
			p.configureWings()
			return fmt.Sprintf("%s wings set for %s, mean flap %.1f°", p.Airframe.Name, p.mode(), p.meanFlap()), nil
		}, object.RequiresActive()).
		Method("armBaitDrop", func(self *object.Instance, p *FlapperData, args object.Args) (any, error) {
			if p.VTOL {
				return fmt.Sprintf("%s cannot arm bait drop in VTOL mode", p.Airframe.Name), nil
			}
			p.BaitDrop = true
			return fmt.Sprintf("%s bait drop armed, %d sections loaded", p.Airframe.Name, p.baitRemaining()), nil
		}, object.RequiresActive()).
		Method("dropBait", func(self *object.Instance, p *FlapperData, args object.Args) (any, error) {
			n := p.dropBait()
			if n == 0 {
				return fmt.Sprintf("%s bait held at %.1f m, %.1f m/s", p.Airframe.Name,
					p.Airframe.Flight.Altitude, p.Airframe.Flight.Airspeed), nil
			}
			return fmt.Sprintf("%s released bait from %d sections", p.Airframe.Name, n), nil
		}, object.RequiresActive()).
		Method("controlStep", func(self *object.Instance, p *FlapperData, args object.Args) (any, error) {
			dt, err := p.Airframe.stepArg(args, 0)
			if err != nil {
				return nil, err
			}
			p.Airframe.advance(dt)
			p.updateMode()
			p.configureWings()
			line := fmt.Sprintf("%s %s, %s", p.Airframe.Name, p.mode(), p.Airframe.flightLine())
			if n := p.dropBait(); n > 0 {
				line += fmt.Sprintf(", released %d", n)
			}
			return line, nil
		}, object.RequiresActive()).
		Method("status", func(self *object.Instance, p *FlapperData, args object.Args) (any, error) {
			var b strings.Builder
			fmt.Fprintf(&b, "=== Wing Control Status ===\n")
			fmt.Fprintf(&b, "Name: %s\nStatus: %s\nMode: %s\n", p.Airframe.Name, self.State(), p.mode())
			fmt.Fprintf(&b, "Flight: %s\n", p.Airframe.flightLine())
			for _, s := range p.Sections {
				fmt.Fprintf(&b, "  Section %d: flap %.1f° vent %.2f pocket %.2f", s.ID, s.FlapAngle, s.VentOpen, s.PocketDepth)
				if s.HasBaitDrop {
					fmt.Fprintf(&b, " bait %.1f released=%t", s.BaitLoad, s.BaitReleased)
				}
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "Attitude corrections: %d", p.Corrections)
			return b.String(), nil
		}).
		Method("metrics", func(self *object.Instance, p *FlapperData, args object.Args) (any, error) {
			m := p.Airframe.metrics()
			m["vtol"] = boolMetric(p.VTOL)
			m["bait_drop"] = boolMetric(p.BaitDrop)
			m["bait_remaining"] = float64(p.baitRemaining())
			m["mean_flap"] = p.meanFlap()
			m["corrections"] = float64(p.Corrections)
			return m, nil
		}).
		Build()
}
