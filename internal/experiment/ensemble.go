package experiment

import (
	"context"
	"fmt"
	"sync"
)

// Ensemble runs one scenario under consecutive seeds. Every run gets its
// own registry, so runs share nothing and execute concurrently.
type Ensemble struct {
	scenario *Scenario
	cfg      Config
	numRuns  int
}

func NewEnsemble(s *Scenario, cfg Config, numRuns int) *Ensemble {
	return &Ensemble{scenario: s, cfg: cfg, numRuns: numRuns}
}

// Run returns the results in seed order. The first setup or run error
// is returned after every run has stopped.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("%w: ensemble of %d runs", ErrInvalidScenario, e.numRuns)
	}
	if err := e.scenario.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.cfg
			cfg.Seed = e.cfg.Seed + int64(idx)

			exp := New(cfg)
			if err := exp.Setup(e.scenario); err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = exp.Run(ctx)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", e.cfg.Seed+int64(i), err)
		}
	}

	return results, nil
}
