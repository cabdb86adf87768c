package models

import "errors"

var (
	ErrUnknownClass  = errors.New("models: unknown class")
	ErrUnknownPreset = errors.New("models: unknown preset")
	ErrNoSource      = errors.New("models: constructor needs a sensor source")
)
