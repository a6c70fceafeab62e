package macro

import "slices"

// Group is a named collection of macros and the unit of persistence.
type Group struct {
	id       string
	name     string
	macros   []*Macro
	modified bool
}

// NewGroup creates an empty group with a new unique identifier.
func NewGroup(name string) *Group {
	return &Group{
		id:   NewIdentifier(),
		name: name,
	}
}

// ID returns the unique identifier.
func (g *Group) ID() string { return g.id }

// SetID replaces the unique identifier.
func (g *Group) SetID(id string) {
	if g.id != id {
		g.id = id
		g.modified = true
	}
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// SetName changes the group name.
func (g *Group) SetName(name string) {
	if g.name != name {
		g.name = name
		g.modified = true
	}
}

// Len returns the number of macros.
func (g *Group) Len() int { return len(g.macros) }

// Macro returns the macro at index.
func (g *Group) Macro(index int) (*Macro, error) {
	if index < 0 || index >= len(g.macros) {
		return nil, rangeError("macro", index, len(g.macros))
	}
	return g.macros[index], nil
}

// Macros returns the macros in order. The slice must not be modified.
func (g *Group) Macros() []*Macro { return g.macros }

// Append adds a macro at the end. The group takes ownership.
func (g *Group) Append(m *Macro) {
	g.macros = append(g.macros, m)
	g.modified = true
}

// Insert places m at index. Index may equal Len.
func (g *Group) Insert(index int, m *Macro) error {
	if index < 0 || index > len(g.macros) {
		return rangeError("insert", index, len(g.macros)+1)
	}
	g.macros = slices.Insert(g.macros, index, m)
	g.modified = true
	return nil
}

// Remove deletes and returns the macro at index.
func (g *Group) Remove(index int) (*Macro, error) {
	if index < 0 || index >= len(g.macros) {
		return nil, rangeError("remove", index, len(g.macros))
	}
	m := g.macros[index]
	g.macros = slices.Delete(g.macros, index, index+1)
	g.modified = true
	return m, nil
}

// RemoveMacro deletes m from the group. Returns false if m is not a member.
func (g *Group) RemoveMacro(m *Macro) bool {
	i := g.IndexOf(m)
	if i < 0 {
		return false
	}
	_, _ = g.Remove(i)
	return true
}

// IndexOf returns the index of m, or -1.
func (g *Group) IndexOf(m *Macro) int {
	return slices.Index(g.macros, m)
}

// Contains reports whether m is a member.
func (g *Group) Contains(m *Macro) bool {
	return g.IndexOf(m) >= 0
}

// ByID returns the macro with the identifier, or nil.
func (g *Group) ByID(id string) *Macro {
	for _, m := range g.macros {
		if m.id == id {
			return m
		}
	}
	return nil
}

// ByName returns the first macro with the name, or nil.
func (g *Group) ByName(name string) *Macro {
	for _, m := range g.macros {
		if m.name == name {
			return m
		}
	}
	return nil
}

// ByShortcut returns the first macro bound to key, or nil. KeyNone never
// matches.
func (g *Group) ByShortcut(key ShortcutKey) *Macro {
	if key == KeyNone {
		return nil
	}
	for _, m := range g.macros {
		if m.shortcut == key {
			return m
		}
	}
	return nil
}

// Sort orders the macros by name. Macros with equal names keep their
// relative order.
func (g *Group) Sort() {
	if !slices.IsSortedFunc(g.macros, Compare) {
		slices.SortStableFunc(g.macros, Compare)
		g.modified = true
	}
}

// Clear removes every macro and resets the name and identifier.
func (g *Group) Clear() {
	g.macros = nil
	g.name = ""
	g.id = ""
	g.modified = false
}

// Copy returns a deep copy that keeps every identifier.
func (g *Group) Copy() *Group {
	out := *g
	out.macros = make([]*Macro, len(g.macros))
	for i, m := range g.macros {
		out.macros[i] = m.Copy()
	}
	return &out
}

// CopyWithNewIdentifier returns a deep copy whose group and macros all have
// fresh identifiers.
func (g *Group) CopyWithNewIdentifier() *Group {
	out := g.Copy()
	out.id = NewIdentifier()
	for _, m := range out.macros {
		m.id = NewIdentifier()
		m.modified = true
	}
	out.modified = true
	return out
}

// IsModified returns true if the group or any macro changed.
func (g *Group) IsModified() bool {
	if g.modified {
		return true
	}
	for _, m := range g.macros {
		if m.IsModified() {
			return true
		}
	}
	return false
}

// SetModified marks the group modified.
func (g *Group) SetModified() {
	g.modified = true
}

// ClearModified resets modified flags recursively.
func (g *Group) ClearModified() {
	g.modified = false
	for _, m := range g.macros {
		m.ClearModified()
	}
}
