// Package macro provides the in-memory model of recorded user-interface macros.
//
// A macro is a named, ordered sequence of commands captured while the user
// interacts with live controls. Macros are collected into groups, and a group
// is the unit that gets persisted to disk.
//
// # Concepts
//
// A Command is one recorded step. It is one of three kinds:
//   - CommandControl: a value change on a named control (check box toggled,
//     combo box item selected, text edited ...)
//   - CommandPointer: a pointer event delivered to a pointer-capture surface,
//     carrying a PointerEventRecord
//   - CommandCustom: a named multi-parameter operation implemented by the host
//
// Each command carries an ordered list of Parameters. Parameter order is
// significant: it is fixed by the schema of the control type or custom
// operation that produced the command.
//
// Parameter values are held in the Value sum type. Every variant reports its
// DataType so callers switch exhaustively instead of casting.
//
// # Identifiers
//
// Groups and macros carry a unique identifier assigned once at creation.
// Copy preserves the identifier; CopyWithNewIdentifier assigns a fresh one.
//
// # Modification Tracking
//
// Every entity tracks whether it was modified since the last ClearModified.
// A group reports modified if it, or any macro, command or parameter inside
// it, is modified.
//
// # Thread Safety
//
// Types in this package are not safe for concurrent mutation. Macros are
// built and replayed on the host's event loop.
package macro
