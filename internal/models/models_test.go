package models

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/sensor"
)

func install(t *testing.T) (*object.Registry, *Catalog) {
	t.Helper()
	reg := object.NewRegistry(object.Options{})
	cat, err := Install(reg)
	if err != nil {
		t.Fatalf("install failed: %v", err)
	}
	return reg, cat
}

func create(t *testing.T, reg *object.Registry, class *object.Class, preset string, env *Env) *object.Instance {
	t.Helper()
	payload, err := NewPayload(class.Name(), preset)
	if err != nil {
		t.Fatal(err)
	}
	inst, err := reg.Create(class, payload, env)
	if err != nil {
		t.Fatalf("create %s: %v", class.Name(), err)
	}
	return inst
}

func send(t *testing.T, reg *object.Registry, inst *object.Instance, method string, args ...any) string {
	t.Helper()
	out, err := reg.Send(inst, method, args...)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	s, _ := out.(string)
	return s
}

func metrics(t *testing.T, reg *object.Registry, inst *object.Instance) Metrics {
	t.Helper()
	sel, _ := reg.Selector("metrics")
	m, err := object.Call[Metrics](reg, inst, sel)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestInstall(t *testing.T) {
	reg, cat := install(t)

	if len(reg.Classes()) != len(cat.Names()) {
		t.Errorf("expected %d classes, got %d", len(cat.Names()), len(reg.Classes()))
	}

	parents := map[*object.Class]*object.Class{
		cat.Dog:              cat.Animal,
		cat.QuantumAnnealing: cat.SpectralAnnealing,
		cat.QuantumZone:      cat.StabilityZone,
		cat.Glide:            cat.Airframe,
		cat.WingFlapper:      cat.Airframe,
	}
	for child, parent := range parents {
		if child.Parent() != parent {
			t.Errorf("%s: parent %v, want %s", child.Name(), child.Parent(), parent.Name())
		}
	}

	if _, err := Install(reg); !errors.Is(err, object.ErrDuplicateClass) {
		t.Errorf("second install: expected ErrDuplicateClass, got %v", err)
	}
}

func TestDog(t *testing.T) {
	reg, cat := install(t)
	dog := create(t, reg, cat.Dog, "", nil)

	if out := send(t, reg, dog, "makeSound"); out != "Dog Rex (age 5) barks: Woof!" {
		t.Errorf("makeSound = %q", out)
	}
	if out := send(t, reg, dog, "move"); out != "Animal Rex moves" {
		t.Errorf("move = %q", out)
	}
	if out := send(t, reg, dog, "wagTail"); !strings.Contains(out, "30 cm") {
		t.Errorf("wagTail = %q", out)
	}

	send(t, reg, dog, "birthday")
	send(t, reg, dog, "grow", 2.0)
	m := metrics(t, reg, dog)
	if m["age"] != 6 || m["tail_length"] != 32 {
		t.Errorf("unexpected metrics %v", m)
	}
}

func TestAnnealing(t *testing.T) {
	reg, cat := install(t)
	env := &Env{Source: sensor.Constant(0)}
	a := create(t, reg, cat.SpectralAnnealing, "", env)

	if _, err := reg.Send(a, "fetchSpectralData"); !errors.Is(err, object.ErrNotActive) {
		t.Fatalf("fetch before initialize: expected ErrNotActive, got %v", err)
	}

	send(t, reg, a, "initializeAnnealing")
	out := send(t, reg, a, "fetchSpectralData")
	if !strings.Contains(out, "Wavelength: 500.0 nm") || !strings.Contains(out, "Source: EMIT") {
		t.Errorf("unexpected reading:\n%s", out)
	}

	send(t, reg, a, "calculateAnnealing", 95.0)
	report := send(t, reg, a, "reportSpectralStatus")
	if !strings.Contains(report, "Annealing Progress: 9.5%") {
		t.Errorf("unexpected report:\n%s", report)
	}
	if !strings.Contains(report, "Status: active") {
		t.Errorf("report should show the active state:\n%s", report)
	}

	if _, err := reg.Send(a, "calculateAnnealing"); !errors.Is(err, object.ErrBadArgument) {
		t.Errorf("missing target: expected ErrBadArgument, got %v", err)
	}

	send(t, reg, a, "shutdown")
	if _, err := reg.Send(a, "fetchSpectralData"); !errors.Is(err, object.ErrNotActive) {
		t.Errorf("fetch after shutdown: expected ErrNotActive, got %v", err)
	}
}

func TestQuantumAnnealing(t *testing.T) {
	reg, cat := install(t)
	q := create(t, reg, cat.QuantumAnnealing, "", &Env{Source: sensor.Constant(0)})

	send(t, reg, q, "initializeAnnealing")
	out := send(t, reg, q, "fetchSpectralData")
	if !strings.Contains(out, "Quantum EMIT") {
		t.Errorf("expected quantum source:\n%s", out)
	}
	send(t, reg, q, "calculateAnnealing", 95.0)

	m := metrics(t, reg, q)
	if m["coherence"] != 0.5 {
		t.Errorf("coherence = %f, want 0.5", m["coherence"])
	}
	if m["superpositions"] != 1 {
		t.Errorf("superpositions = %f, want 1", m["superpositions"])
	}
	if math.Abs(m["progress"]-4.75) > 1e-9 {
		t.Errorf("progress = %f, want 4.75", m["progress"])
	}

	// shutdown is inherited from SpectralAnnealing.
	send(t, reg, q, "shutdown")
	if q.State() != object.Inactive {
		t.Errorf("expected inactive after shutdown, got %s", q.State())
	}
}

func TestConstructorNeedsSource(t *testing.T) {
	reg, cat := install(t)

	tests := []struct {
		name string
		args []any
		want error
	}{
		{"no env", nil, object.ErrBadArgument},
		{"nil env", []any{(*Env)(nil)}, ErrNoSource},
		{"empty env", []any{&Env{}}, ErrNoSource},
		{"wrong type", []any{sensor.Constant(1)}, object.ErrBadArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _ := NewPayload("StabilityZone", "")
			_, err := reg.Create(cat.StabilityZone, payload, tt.args...)
			if !errors.Is(err, object.ErrConstruct) || !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
			if reg.Live() != 0 {
				t.Errorf("failed constructor left %d live instances", reg.Live())
			}
		})
	}
}

func TestStabilityZone(t *testing.T) {
	reg, cat := install(t)
	z := create(t, reg, cat.StabilityZone, "", &Env{Source: sensor.Constant(60)})

	send(t, reg, z, "initializeZone")
	send(t, reg, z, "monitorStability")
	send(t, reg, z, "applyStabilization", 95.0)

	m := metrics(t, reg, z)
	if m["temperature"] != 26 {
		t.Errorf("temperature = %f, want 26", m["temperature"])
	}
	if m["stability"] != 99.5 {
		t.Errorf("stability = %f, want 99.5", m["stability"])
	}

	report := send(t, reg, z, "reportZoneStatus")
	if !strings.Contains(report, "Stability Score: 99.5") {
		t.Errorf("unexpected report:\n%s", report)
	}
}

func TestQuantumZone(t *testing.T) {
	reg, cat := install(t)
	q := create(t, reg, cat.QuantumZone, "", &Env{Source: sensor.Constant(60)})

	send(t, reg, q, "initializeZone")
	send(t, reg, q, "monitorStability")
	send(t, reg, q, "applyStabilization", 95.0)

	m := metrics(t, reg, q)
	if math.Abs(m["field"]-1.1) > 1e-9 {
		t.Errorf("field = %f, want 1.1", m["field"])
	}
	if math.Abs(m["stability"]-99.45) > 1e-9 {
		t.Errorf("stability = %f, want 99.45", m["stability"])
	}
	// The quantum monitor does not touch the environment.
	if m["temperature"] != 25 {
		t.Errorf("temperature = %f, want 25", m["temperature"])
	}
}

func TestPresets(t *testing.T) {
	if _, err := NewPayload("Cat", ""); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("expected ErrUnknownClass, got %v", err)
	}
	if _, err := NewPayload("Dog", "wolf"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}

	a, _ := NewPayload("Dog", "default")
	b, _ := NewPayload("Dog", "")
	if a == b {
		t.Error("presets must return a fresh payload each time")
	}

	names := Presets("Dog")
	if len(names) != 2 || names[0] != "default" || names[1] != "puppy" {
		t.Errorf("unexpected Dog presets %v", names)
	}
	if Presets("Cat") != nil {
		t.Error("expected no presets for an unknown class")
	}
}
