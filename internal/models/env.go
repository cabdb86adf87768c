package models

import (
	"github.com/san-kum/dynobj/internal/object"
	"github.com/san-kum/dynobj/internal/sensor"
)

// Env carries the collaborators a constructor binds into a payload.
// Flight is optional; airframes build a SimFlight from the payload's
// starting altitude when it is nil, with Glider overriding parameters of
// the default glider by name.
type Env struct {
	Source sensor.Source
	Flight sensor.Flight
	Glider map[string]float64
}

func envArg(args object.Args) (*Env, error) {
	env, err := object.Arg[*Env](args, 0)
	if err != nil {
		return nil, err
	}
	if env == nil || env.Source == nil {
		return nil, ErrNoSource
	}
	return env, nil
}

// Metrics is the result of the "metrics" method every class answers.
type Metrics map[string]float64

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
