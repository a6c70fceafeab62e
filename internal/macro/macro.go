package macro

import "strings"

// Macro is a named, ordered sequence of commands.
type Macro struct {
	id          string
	name        string
	description string
	shortcut    ShortcutKey
	commands    []*Command
	modified    bool
}

// New creates an empty macro with a new unique identifier.
func New(name string) *Macro {
	return &Macro{
		id:       NewIdentifier(),
		name:     name,
		modified: true,
	}
}

// ID returns the unique identifier.
func (m *Macro) ID() string { return m.id }

// SetID replaces the unique identifier. Only decoders and explicit
// re-identification should call this.
func (m *Macro) SetID(id string) {
	if m.id != id {
		m.id = id
		m.modified = true
	}
}

// Name returns the macro name.
func (m *Macro) Name() string { return m.name }

// SetName changes the name.
func (m *Macro) SetName(name string) {
	if m.name != name {
		m.name = name
		m.modified = true
	}
}

// Description returns the description.
func (m *Macro) Description() string { return m.description }

// SetDescription changes the description.
func (m *Macro) SetDescription(d string) {
	if m.description != d {
		m.description = d
		m.modified = true
	}
}

// Shortcut returns the shortcut key.
func (m *Macro) Shortcut() ShortcutKey { return m.shortcut }

// SetShortcut changes the shortcut key.
func (m *Macro) SetShortcut(k ShortcutKey) {
	if m.shortcut != k {
		m.shortcut = k
		m.modified = true
	}
}

// Len returns the number of commands.
func (m *Macro) Len() int { return len(m.commands) }

// Command returns the command at index.
func (m *Macro) Command(index int) (*Command, error) {
	if index < 0 || index >= len(m.commands) {
		return nil, rangeError("command", index, len(m.commands))
	}
	return m.commands[index], nil
}

// Commands returns the commands in order. The slice must not be modified.
func (m *Macro) Commands() []*Command { return m.commands }

// Last returns the final command, or nil for an empty macro.
func (m *Macro) Last() *Command {
	if len(m.commands) == 0 {
		return nil
	}
	return m.commands[len(m.commands)-1]
}

// IndexOf returns the index of cmd, or -1.
func (m *Macro) IndexOf(cmd *Command) int {
	for i, c := range m.commands {
		if c == cmd {
			return i
		}
	}
	return -1
}

// Append adds a command at the end. The macro takes ownership.
func (m *Macro) Append(cmd *Command) {
	m.commands = append(m.commands, cmd)
	m.modified = true
}

// Insert places cmd at index, shifting later commands. Index may equal Len.
func (m *Macro) Insert(index int, cmd *Command) error {
	if index < 0 || index > len(m.commands) {
		return rangeError("insert", index, len(m.commands)+1)
	}
	m.commands = append(m.commands, nil)
	copy(m.commands[index+1:], m.commands[index:])
	m.commands[index] = cmd
	m.modified = true
	return nil
}

// Remove deletes and returns the command at index.
func (m *Macro) Remove(index int) (*Command, error) {
	if index < 0 || index >= len(m.commands) {
		return nil, rangeError("remove", index, len(m.commands))
	}
	cmd := m.commands[index]
	m.commands = append(m.commands[:index], m.commands[index+1:]...)
	m.modified = true
	return cmd, nil
}

// Move relocates the command at from to index to.
func (m *Macro) Move(from, to int) error {
	cmd, err := m.Remove(from)
	if err != nil {
		return err
	}
	if err := m.Insert(to, cmd); err != nil {
		// restore
		_ = m.Insert(from, cmd)
		return err
	}
	return nil
}

// Clear removes every command.
func (m *Macro) Clear() {
	if len(m.commands) > 0 {
		m.commands = nil
		m.modified = true
	}
}

// Copy returns a deep copy that keeps the identifier.
func (m *Macro) Copy() *Macro {
	out := *m
	out.commands = make([]*Command, len(m.commands))
	for i, c := range m.commands {
		out.commands[i] = c.Copy()
	}
	return &out
}

// CopyWithNewIdentifier returns a deep copy with a fresh identifier.
func (m *Macro) CopyWithNewIdentifier() *Macro {
	out := m.Copy()
	out.id = NewIdentifier()
	out.modified = true
	return out
}

// IsModified returns true if the macro or any command changed.
func (m *Macro) IsModified() bool {
	if m.modified {
		return true
	}
	for _, c := range m.commands {
		if c.IsModified() {
			return true
		}
	}
	return false
}

// ClearModified resets modified flags recursively.
func (m *Macro) ClearModified() {
	m.modified = false
	for _, c := range m.commands {
		c.ClearModified()
	}
}

// Less orders macros lexicographically by name.
func Less(a, b *Macro) bool {
	return a.name < b.name
}

// Compare returns -1, 0 or +1 comparing macro names.
func Compare(a, b *Macro) int {
	return strings.Compare(a.name, b.name)
}
