package object

// Selector is a stable method identifier. It is interned from the method
// name, so it never depends on where the method sits in a class's table.
type Selector int

// NoSelector is returned by lookups for names that were never interned.
const NoSelector Selector = -1

// SelectorTable interns method names to selectors. It is append-only:
// once a name has a selector, that selector never changes.
type SelectorTable struct {
	byName map[string]Selector
	byID   []string
}

func NewSelectorTable() *SelectorTable {
	return &SelectorTable{
		byName: make(map[string]Selector),
		byID:   make([]string, 0, 64),
	}
}

// Intern returns the selector for name, creating one if needed.
func (st *SelectorTable) Intern(name string) Selector {
	if sel, ok := st.byName[name]; ok {
		return sel
	}
	sel := Selector(len(st.byID))
	st.byName[name] = sel
	st.byID = append(st.byID, name)
	return sel
}

// Lookup returns the selector for name, or NoSelector.
func (st *SelectorTable) Lookup(name string) Selector {
	if sel, ok := st.byName[name]; ok {
		return sel
	}
	return NoSelector
}

// Name returns the method name for sel, or "" if sel is unknown.
func (st *SelectorTable) Name(sel Selector) string {
	if sel < 0 || int(sel) >= len(st.byID) {
		return ""
	}
	return st.byID[sel]
}

func (st *SelectorTable) Len() int {
	return len(st.byID)
}
