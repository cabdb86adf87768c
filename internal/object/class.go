package object

type gate int

const (
	gateNone gate = iota
	gateActivates
	gateDeactivates
	gateRequiresActive
)

// MethodOption attaches lifecycle behavior to a method.
type MethodOption func(*method)

// Activates moves the instance to Active after the method succeeds.
func Activates() MethodOption {
	return func(m *method) { m.gate = gateActivates }
}

// Deactivates moves an Active instance to Inactive after the method succeeds.
// Sending it to an instance that is not Active fails with ErrNotActive.
func Deactivates() MethodOption {
	return func(m *method) { m.gate = gateDeactivates }
}

// RequiresActive rejects the call with ErrNotActive unless the instance is Active.
func RequiresActive() MethodOption {
	return func(m *method) { m.gate = gateRequiresActive }
}

type methodFunc func(self *Instance, view any, args Args) (any, error)

type method struct {
	name string
	fn   methodFunc
	gate gate
}

// Class describes a class: its name, parent, payload type, constructor,
// destructor and declared methods. A Class is built with DefineRoot or
// Define and becomes immutable once registered.
type Class struct {
	name    string
	parent  *Class
	accepts func(payload any) bool
	up      func(payload any) any
	ctor    func(self *Instance, payload any, args Args) error
	dtor    func(self *Instance, payload any)
	methods []*method

	registry *Registry
	table    map[Selector]*method
}

func (c *Class) Name() string   { return c.name }
func (c *Class) Parent() *Class { return c.parent }

// Registered reports whether c has been registered with any registry.
func (c *Class) Registered() bool { return c.registry != nil }

// Methods returns the names declared directly on c, in declaration order.
func (c *Class) Methods() []string {
	names := make([]string, len(c.methods))
	for i, m := range c.methods {
		names[i] = m.name
	}
	return names
}

// Defines reports whether c itself (not an ancestor) declares name.
func (c *Class) Defines(name string) bool {
	for _, m := range c.methods {
		if m.name == name {
			return true
		}
	}
	return false
}

// IsSubclassOf returns true if c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	for current := c; current != nil; current = current.parent {
		if current == other {
			return true
		}
	}
	return false
}

// Depth is the number of ancestors of c.
func (c *Class) Depth() int {
	d := 0
	for p := c.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Ancestry returns c and its ancestors, root first.
func (c *Class) Ancestry() []*Class {
	chain := make([]*Class, 0, c.Depth()+1)
	for current := c; current != nil; current = current.parent {
		chain = append(chain, current)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (c *Class) String() string {
	return "<class " + c.name + ">"
}

// views returns payload seen at the level of c and of every ancestor,
// own level first. An instance owns all of them.
func (c *Class) views(payload any) []any {
	out := make([]any, 0, c.Depth()+1)
	v := payload
	for current := c; current != nil; current = current.parent {
		out = append(out, v)
		if current.up != nil {
			v = current.up(v)
		}
	}
	return out
}

// lookup finds the method for sel on c, walking parents on a miss. It
// returns the method and the class that defines it.
func (c *Class) lookup(sel Selector) (*method, *Class) {
	for current := c; current != nil; current = current.parent {
		if m, ok := current.table[sel]; ok {
			return m, current
		}
	}
	return nil, nil
}
