package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/dynobj/internal/object"
)

// Catalog holds the application classes registered by Install.
type Catalog struct {
	Animal            *object.Class
	Dog               *object.Class
	SpectralAnnealing *object.Class
	QuantumAnnealing  *object.Class
	StabilityZone     *object.Class
	QuantumZone       *object.Class
	Airframe          *object.Class
	Glide             *object.Class
	WingFlapper       *object.Class
}

// Install defines every application class and registers it with reg,
// parents first.
func Install(reg *object.Registry) (*Catalog, error) {
	c := &Catalog{}
	steps := []struct {
		dst    **object.Class
		define func() (*object.Class, error)
	}{
		{&c.Animal, defineAnimal},
		{&c.Dog, func() (*object.Class, error) { return defineDog(c.Animal) }},
		{&c.SpectralAnnealing, defineSpectralAnnealing},
		{&c.QuantumAnnealing, func() (*object.Class, error) { return defineQuantumAnnealing(c.SpectralAnnealing) }},
		{&c.StabilityZone, defineStabilityZone},
		{&c.QuantumZone, func() (*object.Class, error) { return defineQuantumZone(c.StabilityZone) }},
		{&c.Airframe, defineAirframe},
		{&c.Glide, func() (*object.Class, error) { return defineGlide(c.Airframe) }},
		{&c.WingFlapper, func() (*object.Class, error) { return defineWingFlapper(c.Airframe) }},
	}

	for _, s := range steps {
		class, err := s.define()
		if err != nil {
			return nil, err
		}
		if _, err := reg.Register(class); err != nil {
			return nil, fmt.Errorf("install: %w", err)
		}
		*s.dst = class
	}
	return c, nil
}

// Names returns the names of the installed classes in definition order.
func (c *Catalog) Names() []string {
	return []string{
		c.Animal.Name(), c.Dog.Name(),
		c.SpectralAnnealing.Name(), c.QuantumAnnealing.Name(),
		c.StabilityZone.Name(), c.QuantumZone.Name(),
		c.Airframe.Name(), c.Glide.Name(), c.WingFlapper.Name(),
	}
}

// Presets returns the preset names available for a class, sorted.
func Presets(class string) []string {
	byName, ok := presets[class]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPayload returns a fresh payload for class built from the named
// preset. An empty preset selects "default".
func NewPayload(class, preset string) (any, error) {
	byName, ok := presets[class]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	if preset == "" {
		preset = "default"
	}
	fn, ok := byName[preset]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPreset, class, preset)
	}
	return fn(), nil
}
