package object

import (
	"fmt"
	"slices"
)

// Method is the typed signature of a method on a class whose payload is P.
// p is the payload viewed at the level of the defining class.
type Method[P any] func(self *Instance, p *P, args Args) (any, error)

// ClassBuilder assembles a Class with payload type P.
type ClassBuilder[P any] struct {
	class *Class
	err   error
}

// DefineRoot starts a class with no parent.
func DefineRoot[P any](name string) *ClassBuilder[P] {
	c := &Class{
		name: name,
		accepts: func(payload any) bool {
			p, ok := payload.(*P)
			return ok && p != nil
		},
	}
	return &ClassBuilder[P]{class: c}
}

// Define starts a class derived from parent. The payload P holds the
// parent's payload B as an explicit field; base returns a pointer to it.
//
// Constructors are not chained: the constructor of the derived class is
// the only one that runs, and it must initialize every field of P,
// including those inside the parent's payload.
func Define[P, B any](name string, parent *Class, base func(*P) *B) *ClassBuilder[P] {
	b := DefineRoot[P](name)
	if parent == nil {
		b.err = fmt.Errorf("define %s: %w: nil parent", name, ErrParentNotRegistered)
		return b
	}
	if base == nil {
		b.err = fmt.Errorf("define %s: %w: nil base accessor", name, ErrPayloadType)
		return b
	}
	if !parent.accepts(base(new(P))) {
		b.err = fmt.Errorf("define %s: %w: base view is not the payload of %s", name, ErrPayloadType, parent.name)
		return b
	}
	b.class.parent = parent
	b.class.up = func(payload any) any { return base(payload.(*P)) }
	return b
}

// Constructor sets the function run by Create after the instance is bound.
func (b *ClassBuilder[P]) Constructor(fn func(self *Instance, p *P, args Args) error) *ClassBuilder[P] {
	b.class.ctor = func(self *Instance, payload any, args Args) error {
		return fn(self, payload.(*P), args)
	}
	return b
}

// Destructor sets the function run by Destroy before the slot is released.
func (b *ClassBuilder[P]) Destructor(fn func(self *Instance, p *P)) *ClassBuilder[P] {
	b.class.dtor = func(self *Instance, payload any) {
		fn(self, payload.(*P))
	}
	return b
}

// Method declares a method. Declaring a name the parent already has
// overrides it; names not declared here are inherited.
func (b *ClassBuilder[P]) Method(name string, fn Method[P], opts ...MethodOption) *ClassBuilder[P] {
	m := &method{
		name: name,
		fn: func(self *Instance, view any, args Args) (any, error) {
			p, ok := view.(*P)
			if !ok {
				return nil, fmt.Errorf("%w: %T", ErrPayloadType, view)
			}
			return fn(self, p, args)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	b.class.methods = append(b.class.methods, m)
	return b
}

// Build returns the class, or the first error recorded while defining it.
// The class is a snapshot: calls on the builder after Build do not
// change it.
func (b *ClassBuilder[P]) Build() (*Class, error) {
	if b.err != nil {
		return nil, b.err
	}
	c := *b.class
	c.methods = slices.Clone(b.class.methods)
	return &c, nil
}
