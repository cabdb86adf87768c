package object

import "fmt"

// Create allocates an instance of c, takes ownership of payload and runs
// the constructor of c with args. Class and payload checks happen before
// any storage is taken; if the constructor fails the slot is released
// again, so a failed Create leaves the registry as it was.
func (r *Registry) Create(c *Class, payload any, args ...any) (*Instance, error) {
	if err := r.checkClass(c); err != nil {
		return nil, err
	}
	if payload == nil || !c.accepts(payload) {
		return nil, fmt.Errorf("create %s: %w: got %T", c.name, ErrPayloadType, payload)
	}
	views := c.views(payload)
	if r.arena.owns(views) {
		return nil, fmt.Errorf("create %s: %w", c.name, ErrPayloadAliased)
	}

	inst := &Instance{class: c, payload: payload, views: views, reg: r}
	h, err := r.arena.alloc(inst)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", c.name, err)
	}
	inst.h = h
	r.nextID++
	inst.id = r.nextID

	if c.ctor != nil {
		if err := c.ctor(inst, payload, Args(args)); err != nil {
			r.arena.release(h, inst)
			inst.state = Destroyed
			return nil, fmt.Errorf("create %s: %w: %w", c.name, ErrConstruct, err)
		}
	}
	return inst, nil
}

// Destroy runs the destructor of the instance's class and releases its
// storage. It succeeds at most once per instance; later calls, and any
// other use of the instance, fail with ErrInvalidInstance. The instance
// is already Destroyed while its destructor runs, so a destructor that
// reaches Destroy or Send on it again gets ErrInvalidInstance.
func (r *Registry) Destroy(inst *Instance) error {
	if err := r.checkInstance(inst); err != nil {
		return err
	}
	inst.state = Destroyed
	if inst.class.dtor != nil {
		inst.class.dtor(inst, inst.payload)
	}
	r.arena.release(inst.h, inst)
	inst.payload = nil
	inst.views = nil
	return nil
}

// Activate moves an uninitialized or inactive instance to Active.
func (r *Registry) Activate(inst *Instance) error {
	if err := r.checkInstance(inst); err != nil {
		return err
	}
	inst.state = Active
	return nil
}

// Deactivate moves an Active instance to Inactive.
func (r *Registry) Deactivate(inst *Instance) error {
	if err := r.checkInstance(inst); err != nil {
		return err
	}
	if inst.state != Active {
		return &DispatchError{Class: inst.class.name, Method: "deactivate", Wrapped: ErrNotActive}
	}
	inst.state = Inactive
	return nil
}
