package experiment

import (
	"fmt"

	"github.com/san-kum/dynobj/internal/config"
)

type InstanceSpec struct {
	Name   string `yaml:"name" toml:"name"`
	Class  string `yaml:"class" toml:"class"`
	Preset string `yaml:"preset,omitempty" toml:"preset,omitempty"`
}

// StepSpec sends Method to Instance Repeat times. When ExpectError is set
// the step must fail with an error whose text contains it.
type StepSpec struct {
	Instance    string    `yaml:"instance" toml:"instance"`
	Method      string    `yaml:"method" toml:"method"`
	Args        []float64 `yaml:"args,omitempty" toml:"args,omitempty"`
	Repeat      int       `yaml:"repeat,omitempty" toml:"repeat,omitempty"`
	ExpectError string    `yaml:"expect_error,omitempty" toml:"expect_error,omitempty"`
}

type Scenario struct {
	Name        string         `yaml:"name" toml:"name"`
	Description string         `yaml:"description" toml:"description"`
	Instances   []InstanceSpec `yaml:"instances" toml:"instances"`
	Steps       []StepSpec     `yaml:"steps" toml:"steps"`
}

func LoadScenario(path string) (*Scenario, error) {
	var s Scenario
	if err := config.Decode(path, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidScenario)
	}
	if len(s.Instances) == 0 {
		return fmt.Errorf("%w: %s has no instances", ErrInvalidScenario, s.Name)
	}
	names := make(map[string]bool, len(s.Instances))
	for _, inst := range s.Instances {
		if inst.Name == "" || inst.Class == "" {
			return fmt.Errorf("%w: %s: instance needs a name and a class", ErrInvalidScenario, s.Name)
		}
		if names[inst.Name] {
			return fmt.Errorf("%w: %s: duplicate instance %s", ErrInvalidScenario, s.Name, inst.Name)
		}
		names[inst.Name] = true
	}
	for i, step := range s.Steps {
		if !names[step.Instance] {
			return fmt.Errorf("%w: %s: step %d targets unknown instance %q", ErrInvalidScenario, s.Name, i, step.Instance)
		}
		if step.Method == "" {
			return fmt.Errorf("%w: %s: step %d has no method", ErrInvalidScenario, s.Name, i)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("%w: %s: step %d repeats %d times", ErrInvalidScenario, s.Name, i, step.Repeat)
		}
	}
	return nil
}

// Len is the number of sends the scenario expands to.
func (s *Scenario) Len() int {
	n := 0
	for _, step := range s.Steps {
		n += step.times()
	}
	return n
}

func (s StepSpec) times() int {
	if s.Repeat <= 0 {
		return 1
	}
	return s.Repeat
}
