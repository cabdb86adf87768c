package experiment

import (
	"fmt"
	"sort"
)

type Registry struct {
	scenarios map[string]func() *Scenario
}

func NewRegistry() *Registry {
	r := &Registry{
		scenarios: make(map[string]func() *Scenario),
	}

	r.scenarios["animals"] = animalsScenario
	r.scenarios["annealing"] = annealingScenario
	r.scenarios["zones"] = zonesScenario
	r.scenarios["glide"] = glideScenario
	r.scenarios["wings"] = wingsScenario

	return r
}

func (r *Registry) Get(name string) (*Scenario, error) {
	fn, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return fn(), nil
}

// Add registers a scenario under its own name, replacing any built-in.
func (r *Registry) Add(s *Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.scenarios[s.Name] = func() *Scenario { return s }
	return nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
