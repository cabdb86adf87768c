package object

import "fmt"

// Invoke resolves sel against the class of inst, walking up the parent
// chain on a miss, and runs the implementation it finds. The method is
// handed the payload viewed at the level of the class that defines it.
func (r *Registry) Invoke(inst *Instance, sel Selector, args ...any) (any, error) {
	if err := r.checkInstance(inst); err != nil {
		return nil, err
	}

	m, owner := inst.class.lookup(sel)
	if m == nil {
		name := r.selectors.Name(sel)
		if name == "" {
			name = fmt.Sprintf("#%d", int(sel))
		}
		return nil, &DispatchError{Class: inst.class.name, Method: name, Wrapped: ErrUnknownMethod}
	}

	switch m.gate {
	case gateRequiresActive, gateDeactivates:
		if inst.state != Active {
			return nil, &DispatchError{Class: inst.class.name, Method: m.name, Wrapped: ErrNotActive}
		}
	}

	result, err := m.fn(inst, inst.viewAt(owner), Args(args))
	if err != nil {
		return nil, &DispatchError{Class: inst.class.name, Method: m.name, Wrapped: err}
	}

	if inst.state == Destroyed {
		return result, nil
	}
	switch m.gate {
	case gateActivates:
		inst.state = Active
	case gateDeactivates:
		inst.state = Inactive
	}
	return result, nil
}

// Send is Invoke with the selector looked up by name.
func (r *Registry) Send(inst *Instance, name string, args ...any) (any, error) {
	if err := r.checkInstance(inst); err != nil {
		return nil, err
	}
	sel, ok := r.Selector(name)
	if !ok {
		return nil, &DispatchError{Class: inst.class.name, Method: name, Wrapped: ErrUnknownMethod}
	}
	return r.Invoke(inst, sel, args...)
}

// RespondsTo reports whether a call to name on inst would resolve.
func (r *Registry) RespondsTo(inst *Instance, name string) bool {
	if r.checkInstance(inst) != nil {
		return false
	}
	sel, ok := r.Selector(name)
	if !ok {
		return false
	}
	m, _ := inst.class.lookup(sel)
	return m != nil
}

// Call invokes sel and asserts the result to R.
func Call[R any](r *Registry, inst *Instance, sel Selector, args ...any) (R, error) {
	var zero R
	result, err := r.Invoke(inst, sel, args...)
	if err != nil {
		return zero, err
	}
	v, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %T, want %T", ErrResultType, result, zero)
	}
	return v, nil
}
