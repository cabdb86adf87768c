package object

import "fmt"

// State is the lifecycle state of an instance.
type State int

const (
	Uninitialized State = iota
	Active
	Inactive
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Instance is a header bound to a Class plus the payload it exclusively
// owns. Instances are created by Registry.Create and released by
// Registry.Destroy; they are not safe for concurrent use.
type Instance struct {
	id      uint64
	class   *Class
	payload any
	views   []any
	state   State
	h       handle
	reg     *Registry
}

func (i *Instance) ID() uint64    { return i.id }
func (i *Instance) Class() *Class { return i.class }
func (i *Instance) State() State  { return i.state }
func (i *Instance) IsA(c *Class) bool {
	return i.class.IsSubclassOf(c)
}

func (i *Instance) String() string {
	return fmt.Sprintf("<%s#%d %s>", i.class.name, i.id, i.state)
}

// viewAt walks the payload up the base accessors until it reaches the
// level of owner, which must be i.class or one of its ancestors.
func (i *Instance) viewAt(owner *Class) any {
	v := i.payload
	for c := i.class; c != nil && c != owner; c = c.parent {
		v = c.up(v)
	}
	return v
}

// View returns the payload of inst seen at the level of class at.
// at must be the instance's class or one of its ancestors.
func View[B any](inst *Instance, at *Class) (*B, error) {
	if inst == nil || inst.state == Destroyed {
		return nil, ErrInvalidInstance
	}
	if at == nil || !inst.class.IsSubclassOf(at) {
		return nil, fmt.Errorf("%w: %s is not a %v", ErrPayloadType, inst.class.name, at)
	}
	v, ok := inst.viewAt(at).(*B)
	if !ok {
		return nil, fmt.Errorf("%w: view of %s at %s", ErrPayloadType, inst.class.name, at.name)
	}
	return v, nil
}

// PayloadOf returns the payload of inst at its own class level.
func PayloadOf[P any](inst *Instance) (*P, error) {
	if inst == nil {
		return nil, ErrInvalidInstance
	}
	return View[P](inst, inst.class)
}

// Payload returns the payload of a live instance without asserting its
// type, for callers such as encoders that handle any class.
func (r *Registry) Payload(inst *Instance) (any, error) {
	if err := r.checkInstance(inst); err != nil {
		return nil, err
	}
	return inst.payload, nil
}
