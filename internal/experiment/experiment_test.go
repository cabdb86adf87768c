package experiment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/san-kum/dynobj/internal/models"
	"github.com/san-kum/dynobj/internal/object"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.List()
	want := []string{"animals", "annealing", "glide", "wings", "zones"}
	if len(names) != len(want) {
		t.Fatalf("expected %d scenarios, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("scenario %d = %s, want %s", i, names[i], want[i])
		}
	}

	if _, err := r.Get("nonexistent"); !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("expected ErrUnknownScenario, got %v", err)
	}

	custom := &Scenario{
		Name:      "custom",
		Instances: []InstanceSpec{{Name: "a", Class: "Animal"}},
	}
	if err := r.Add(custom); err != nil {
		t.Fatal(err)
	}
	if s, err := r.Get("custom"); err != nil || s.Name != "custom" {
		t.Errorf("custom scenario not registered: %v", err)
	}
}

func TestBuiltinScenarios(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.List() {
		t.Run(name, func(t *testing.T) {
			s, err := r.Get(name)
			if err != nil {
				t.Fatal(err)
			}
			exp := New(Config{Seed: 42})
			if err := exp.Setup(s); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			res, err := exp.Run(context.Background())
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if res.Failures != 0 {
				for _, rec := range res.Records {
					if rec.Failed {
						t.Logf("step %d %s.%s: %s", rec.Step, rec.Instance, rec.Method, rec.Err)
					}
				}
				t.Errorf("expected no failures, got %d", res.Failures)
			}
			if len(res.Records) != s.Len() {
				t.Errorf("expected %d records, got %d", s.Len(), len(res.Records))
			}
			if res.Leaked != 0 {
				t.Errorf("leaked %d instances", res.Leaked)
			}
			if exp.Registry().Live() != 0 {
				t.Errorf("registry still holds %d instances", exp.Registry().Live())
			}
		})
	}
}

func TestRun_Animals(t *testing.T) {
	s, _ := NewRegistry().Get("animals")
	exp := New(Config{Seed: 1})
	if err := exp.Setup(s); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Records) != 8 {
		t.Fatalf("expected 8 records, got %d", len(res.Records))
	}
	if got := res.Records[0].Output; got != "Dog Rex (age 5) barks: Woof!" {
		t.Errorf("makeSound = %q", got)
	}
	if got := res.Records[1].Output; got != "Animal Rex moves" {
		t.Errorf("move = %q", got)
	}

	last := res.Records[7]
	if last.Failed || !strings.Contains(last.Err, "unknown method") {
		t.Errorf("expected an expected unknown method error, got %+v", last)
	}

	if res.Metrics["rex.age"] != 7 || res.Metrics["rex.tail_length"] != 35 {
		t.Errorf("unexpected final metrics %v", res.Metrics)
	}
	if res.Metrics["generic.age"] != 3 {
		t.Errorf("generic age = %f", res.Metrics["generic.age"])
	}

	// Two creation snapshots plus one per step.
	if len(res.Snapshots) != 10 {
		t.Fatalf("expected 10 snapshots, got %d", len(res.Snapshots))
	}
	var dog models.DogData
	grow := res.Snapshots[2+3]
	if grow.Step != 4 || grow.Instance != "rex" {
		t.Fatalf("unexpected snapshot %d/%s", grow.Step, grow.Instance)
	}
	if err := cbor.Unmarshal(grow.Payload, &dog); err != nil {
		t.Fatal(err)
	}
	if dog.TailLength != 35 || dog.Animal.Name != "Rex" {
		t.Errorf("snapshot decoded to %+v", dog)
	}
}

func TestNext_Stepping(t *testing.T) {
	s, _ := NewRegistry().Get("zones")
	exp := New(Config{Seed: 3})

	if _, err := exp.Next(); !errors.Is(err, ErrNotSetup) {
		t.Errorf("Next before setup: expected ErrNotSetup, got %v", err)
	}
	if _, err := exp.Close(); !errors.Is(err, ErrNotSetup) {
		t.Errorf("Close before setup: expected ErrNotSetup, got %v", err)
	}
	if _, err := exp.Run(context.Background()); !errors.Is(err, ErrNotSetup) {
		t.Errorf("Run before setup: expected ErrNotSetup, got %v", err)
	}

	if err := exp.Setup(s); err != nil {
		t.Fatal(err)
	}
	rec, err := exp.Next()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Method != "initializeZone" || rec.State != "active" {
		t.Errorf("unexpected first record %+v", rec)
	}
	if rec.Metrics["stability"] != 100 {
		t.Errorf("expected stability 100, got %v", rec.Metrics)
	}
	if done, total := exp.Progress(); done != 1 || total != s.Len() {
		t.Errorf("progress %d/%d", done, total)
	}

	for !exp.Done() {
		if _, err := exp.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := exp.Next(); !errors.Is(err, ErrFinished) {
		t.Errorf("expected ErrFinished, got %v", err)
	}

	first, err := exp.Close()
	if err != nil {
		t.Fatal(err)
	}
	again, err := exp.Close()
	if err != nil || again != first {
		t.Error("second Close should return the same result")
	}
}

func TestRun_ExpectationMismatch(t *testing.T) {
	s := &Scenario{
		Name:      "mismatch",
		Instances: []InstanceSpec{{Name: "rex", Class: "Dog"}},
		Steps: []StepSpec{
			{Instance: "rex", Method: "move", ExpectError: "unknown method"},
			{Instance: "rex", Method: "fly"},
			{Instance: "rex", Method: "grow", ExpectError: "not active"},
		},
	}
	exp := New(Config{})
	if err := exp.Setup(s); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Failures != 3 {
		t.Errorf("expected 3 failures, got %d", res.Failures)
	}
	for _, rec := range res.Records {
		if !rec.Failed {
			t.Errorf("step %d should have failed", rec.Step)
		}
	}
}

func TestRun_Canceled(t *testing.T) {
	s, _ := NewRegistry().Get("glide")
	exp := New(Config{})
	if err := exp.Setup(s); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := exp.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res == nil || len(res.Records) != 0 || res.Leaked != 0 {
		t.Errorf("unexpected result after cancel: %+v", res)
	}
}

func TestRunEach(t *testing.T) {
	s, _ := NewRegistry().Get("animals")
	exp := New(Config{})
	if err := exp.Setup(s); err != nil {
		t.Fatal(err)
	}

	var steps []int
	res, err := exp.RunEach(context.Background(), func(rec Record) {
		steps = append(steps, rec.Step)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != len(res.Records) {
		t.Fatalf("callback saw %d steps, result has %d", len(steps), len(res.Records))
	}
	for i, step := range steps {
		if step != i+1 {
			t.Errorf("callback %d got step %d", i, step)
		}
	}
}

func TestRunEach_CloseErrorKept(t *testing.T) {
	s, _ := NewRegistry().Get("animals")
	exp := New(Config{})
	if err := exp.Setup(s); err != nil {
		t.Fatal(err)
	}

	// Destroying an instance behind the experiment's back makes Close fail.
	inst, _ := exp.Instance(exp.order[0])
	if err := exp.Registry().Destroy(inst); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := exp.RunEach(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !errors.Is(err, object.ErrInvalidInstance) {
		t.Errorf("close error was dropped: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result")
	}
}

func TestSetup_Failures(t *testing.T) {
	animals, _ := NewRegistry().Get("animals")

	exp := New(Config{Capacity: 1})
	err := exp.Setup(animals)
	if !errors.Is(err, object.ErrAllocation) {
		t.Errorf("expected ErrAllocation, got %v", err)
	}
	if exp.Registry().Live() != 0 {
		t.Errorf("failed setup left %d instances", exp.Registry().Live())
	}
	if _, err := exp.Next(); !errors.Is(err, ErrNotSetup) {
		t.Errorf("expected ErrNotSetup after failed setup, got %v", err)
	}

	unknown := &Scenario{Name: "cats", Instances: []InstanceSpec{{Name: "tom", Class: "Cat"}}}
	if err := New(Config{}).Setup(unknown); !errors.Is(err, models.ErrUnknownClass) {
		t.Errorf("expected ErrUnknownClass, got %v", err)
	}

	badPreset := &Scenario{Name: "wolves", Instances: []InstanceSpec{{Name: "w", Class: "Dog", Preset: "wolf"}}}
	if err := New(Config{}).Setup(badPreset); !errors.Is(err, models.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	one := []InstanceSpec{{Name: "a", Class: "Animal"}}
	tests := []struct {
		name string
		s    Scenario
	}{
		{"no name", Scenario{Instances: one}},
		{"no instances", Scenario{Name: "x"}},
		{"instance without class", Scenario{Name: "x", Instances: []InstanceSpec{{Name: "a"}}}},
		{"duplicate instance", Scenario{Name: "x", Instances: append(one, one[0])}},
		{"unknown target", Scenario{Name: "x", Instances: one, Steps: []StepSpec{{Instance: "b", Method: "move"}}}},
		{"no method", Scenario{Name: "x", Instances: one, Steps: []StepSpec{{Instance: "a"}}}},
		{"negative repeat", Scenario{Name: "x", Instances: one, Steps: []StepSpec{{Instance: "a", Method: "move", Repeat: -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.Validate(); !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("expected ErrInvalidScenario, got %v", err)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"dogs.yaml": `name: dogs
description: a dog grows
instances:
  - name: rex
    class: Dog
    preset: puppy
steps:
  - instance: rex
    method: grow
    args: [3]
    repeat: 2
`,
		"dogs.toml": `name = "dogs"
description = "a dog grows"

[[instances]]
name = "rex"
class = "Dog"
preset = "puppy"

[[steps]]
instance = "rex"
method = "grow"
args = [3.0]
repeat = 2
`,
	}

	for file, body := range files {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(dir, file)
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			s, err := LoadScenario(path)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if s.Name != "dogs" || len(s.Instances) != 1 || s.Len() != 2 {
				t.Fatalf("unexpected scenario %+v", s)
			}

			exp := New(Config{})
			if err := exp.Setup(s); err != nil {
				t.Fatal(err)
			}
			res, err := exp.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if res.Metrics["rex.tail_length"] != 14 {
				t.Errorf("puppy tail should grow from 8 to 14, got %v", res.Metrics)
			}
		})
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("name: bad\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(bad); !errors.Is(err, ErrInvalidScenario) {
		t.Errorf("expected ErrInvalidScenario, got %v", err)
	}
}

func TestSetup_GliderParams(t *testing.T) {
	s, _ := NewRegistry().Get("glide")

	exp := New(Config{Glider: map[string]float64{"wingspan": 1}})
	if err := exp.Setup(s); !errors.Is(err, object.ErrBadArgument) {
		t.Errorf("expected ErrBadArgument, got %v", err)
	}
	if exp.Registry().Live() != 0 {
		t.Errorf("failed setup left %d live instances", exp.Registry().Live())
	}
}
