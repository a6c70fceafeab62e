package macro

import (
	"errors"
	"fmt"
)

// Model errors.
var (
	// ErrOutOfRange indicates an index outside the valid range.
	ErrOutOfRange = errors.New("index out of range")

	// ErrTypeMismatch indicates a value whose variant does not match the
	// declared data type.
	ErrTypeMismatch = errors.New("value type does not match data type")

	// ErrInvalidCommand indicates a command that cannot be constructed.
	ErrInvalidCommand = errors.New("invalid macro command")

	// ErrSchemaMismatch indicates parameters that do not follow a schema.
	ErrSchemaMismatch = errors.New("parameters do not match schema")
)

// RangeError records an out-of-range index.
type RangeError struct {
	Op    string
	Index int
	Len   int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d)", e.Op, e.Index, e.Len)
}

// Unwrap returns ErrOutOfRange.
func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}

func rangeError(op string, index, n int) error {
	return &RangeError{Op: op, Index: index, Len: n}
}
