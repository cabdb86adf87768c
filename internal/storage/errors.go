package storage

import "errors"

var (
	ErrRunNotFound   = errors.New("storage: run not found")
	ErrUnknownField  = errors.New("storage: no such field in run")
	ErrNotOpen       = errors.New("storage: store not initialized")
	ErrMalformedStep = errors.New("storage: malformed step row")
)
