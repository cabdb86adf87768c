package object

import (
	"fmt"
	"sort"
)

// Options configures a Registry. Capacity bounds the number of live
// instances; zero or less means no bound.
type Options struct {
	Capacity int
}

// Registry owns the method tables of a set of classes and the storage of
// their instances. Build one at startup and pass it to whatever creates
// instances; there is no global registry.
type Registry struct {
	selectors *SelectorTable
	classes   map[string]*Class
	order     []*Class
	arena     *arena
	nextID    uint64
}

func NewRegistry(opts Options) *Registry {
	capacity := max(opts.Capacity, 0)
	return &Registry{
		selectors: NewSelectorTable(),
		classes:   make(map[string]*Class),
		arena:     newArena(capacity),
	}
}

// Register freezes c and builds its method table. The parent of c must
// already be registered here. Selectors are interned from method names in
// the same pass, so the table and its identifiers cannot drift apart.
func (r *Registry) Register(c *Class) (*Class, error) {
	if c == nil {
		return nil, fmt.Errorf("register: %w: nil class", ErrClassNotRegistered)
	}
	if c.registry == r {
		return nil, fmt.Errorf("register %s: %w", c.name, ErrDuplicateClass)
	}
	if c.registry != nil {
		return nil, fmt.Errorf("register %s: %w", c.name, ErrFrozen)
	}
	if _, exists := r.classes[c.name]; exists {
		return nil, fmt.Errorf("register %s: %w", c.name, ErrDuplicateClass)
	}
	if c.parent != nil && c.parent.registry != r {
		return nil, fmt.Errorf("register %s: %w: %s", c.name, ErrParentNotRegistered, c.parent.name)
	}

	seen := make(map[string]bool, len(c.methods))
	for _, m := range c.methods {
		if seen[m.name] {
			return nil, fmt.Errorf("register %s: %w: %s", c.name, ErrDuplicateMethod, m.name)
		}
		seen[m.name] = true
	}

	table := make(map[Selector]*method, len(c.methods))
	for _, m := range c.methods {
		table[r.selectors.Intern(m.name)] = m
	}
	c.table = table
	c.registry = r
	r.classes[c.name] = c
	r.order = append(r.order, c)
	return c, nil
}

// Selector returns the selector for a method name known to this registry.
func (r *Registry) Selector(name string) (Selector, bool) {
	sel := r.selectors.Lookup(name)
	return sel, sel != NoSelector
}

// MustSelector is like Selector but panics if name was never interned.
// It is meant for call sites that name methods of classes they registered.
func (r *Registry) MustSelector(name string) Selector {
	sel, ok := r.Selector(name)
	if !ok {
		panic(fmt.Sprintf("object: no selector for %q", name))
	}
	return sel
}

func (r *Registry) SelectorName(sel Selector) string {
	return r.selectors.Name(sel)
}

func (r *Registry) Class(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Classes returns every registered class sorted by name.
func (r *Registry) Classes() []*Class {
	out := make([]*Class, len(r.order))
	copy(out, r.order)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Children returns the registered classes whose parent is c, in
// registration order.
func (r *Registry) Children(c *Class) []*Class {
	var out []*Class
	for _, k := range r.order {
		if k.parent == c {
			out = append(out, k)
		}
	}
	return out
}

// Node is a class in the inheritance tree together with its subclasses.
type Node struct {
	Class    *Class
	Children []*Node
}

// Hierarchy returns the registered classes as a forest: every root class
// with its subclasses beneath it, in registration order.
func (r *Registry) Hierarchy() []*Node {
	return r.nodes(nil)
}

func (r *Registry) nodes(parent *Class) []*Node {
	children := r.Children(parent)
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		out = append(out, &Node{Class: c, Children: r.nodes(c)})
	}
	return out
}

// Binding is one row of a class's flattened method table.
type Binding struct {
	Method    string
	Selector  Selector
	Owner     *Class
	Overrides bool
}

// MethodTable lists every method reachable from c, in the order the
// methods were first declared walking from the root class down, along
// with the class whose implementation a call would run.
func (r *Registry) MethodTable(c *Class) []Binding {
	var out []Binding
	seen := make(map[string]bool)
	for _, k := range c.Ancestry() {
		for _, m := range k.methods {
			if seen[m.name] {
				continue
			}
			seen[m.name] = true
			sel := r.selectors.Lookup(m.name)
			_, owner := c.lookup(sel)
			out = append(out, Binding{
				Method:    m.name,
				Selector:  sel,
				Owner:     owner,
				Overrides: owner != k,
			})
		}
	}
	return out
}

// Live is the number of instances created and not yet destroyed.
func (r *Registry) Live() int { return r.arena.live }

// Capacity is the bound on live instances, or 0 if there is none.
func (r *Registry) Capacity() int { return r.arena.capacity }

func (r *Registry) checkClass(c *Class) error {
	if c == nil || c.registry != r {
		name := "<nil>"
		if c != nil {
			name = c.name
		}
		return fmt.Errorf("%w: %s", ErrClassNotRegistered, name)
	}
	for p := c.parent; p != nil; p = p.parent {
		if p.registry != r {
			return fmt.Errorf("%w: %s (parent of %s)", ErrParentNotRegistered, p.name, c.name)
		}
	}
	return nil
}

func (r *Registry) checkInstance(inst *Instance) error {
	if inst == nil || inst.reg != r || inst.state == Destroyed {
		return ErrInvalidInstance
	}
	if !r.arena.valid(inst.h, inst) {
		return ErrInvalidInstance
	}
	return nil
}
