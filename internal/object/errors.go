package object

import (
	"errors"
	"fmt"
)

// Errors returned by the object model. All of them are sentinels that
// callers match with errors.Is.
var (
	// ErrAllocation indicates the registry arena has no free instance slot.
	ErrAllocation = errors.New("object: instance storage exhausted")

	// ErrInvalidInstance indicates a nil, foreign or destroyed instance.
	ErrInvalidInstance = errors.New("object: invalid instance (nil, foreign or destroyed)")

	// ErrUnknownMethod indicates no class in the chain defines the selector.
	ErrUnknownMethod = errors.New("object: unknown method")

	// ErrNotActive indicates a method that requires an active instance was
	// sent to one that is uninitialized or inactive.
	ErrNotActive = errors.New("object: instance not active")

	ErrDuplicateClass      = errors.New("object: class already registered")
	ErrParentNotRegistered = errors.New("object: parent class not registered")
	ErrClassNotRegistered  = errors.New("object: class not registered")
	ErrDuplicateMethod     = errors.New("object: method declared twice")
	ErrFrozen              = errors.New("object: class is frozen by another registry")

	// ErrPayloadType indicates a payload (or base view) of the wrong type.
	ErrPayloadType = errors.New("object: payload type mismatch")

	// ErrPayloadAliased indicates the payload is already owned by a live instance.
	ErrPayloadAliased = errors.New("object: payload already owned by another instance")

	// ErrConstruct wraps a failure returned by a class constructor.
	ErrConstruct = errors.New("object: constructor failed")

	ErrBadArgument = errors.New("object: bad argument")
	ErrResultType  = errors.New("object: unexpected result type")
)

// DispatchError wraps a failure with the class and method it happened on.
type DispatchError struct {
	Class   string
	Method  string
	Wrapped error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s>>%s: %v", e.Class, e.Method, e.Wrapped)
}

func (e *DispatchError) Unwrap() error {
	return e.Wrapped
}
