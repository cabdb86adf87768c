package experiment

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownScenario = errors.New("experiment: unknown scenario")
	ErrInvalidScenario = errors.New("experiment: invalid scenario")
	ErrNotSetup        = errors.New("experiment: not set up")
	ErrFinished        = errors.New("experiment: no steps left")
)

// StepError reports a step whose outcome did not match the scenario.
type StepError struct {
	Step     int
	Instance string
	Method   string
	Wrapped  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d %s.%s: %v", e.Step, e.Instance, e.Method, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
