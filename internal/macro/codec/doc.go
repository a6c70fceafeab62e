// Package codec reads and writes macro groups as XML.
//
// The writer always emits the current schema version. The reader accepts
// every version it knows and rejects any other version outright; within a
// known version, unexpected elements are skipped and reported as Warnings.
// Older readers therefore tolerate files from newer writers that only add
// optional elements, while a version bump is a hard stop.
//
// Missing attributes are handled by kind. Cosmetic attributes (macro name,
// identifiers, shortcut key, delay) fall back to a default and produce a
// warning. Structural attributes (command type, control type, parameter
// data type, pointer event fields) cannot be defaulted and fail the decode.
// A failed decode leaves the group empty.
//
// The reader also understands the older single-command attribute scheme
// (ObjectClass / ObjectValue) so that early files remain loadable. The
// writer never produces it.
package codec
