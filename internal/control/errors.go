package control

import (
	"errors"
	"fmt"

	"github.com/dshills/uimacro/internal/macro"
)

var (
	// ErrUnsupportedType indicates a control type without a handler.
	ErrUnsupportedType = errors.New("unsupported control type")

	// ErrCapabilityMissing indicates a control that does not implement
	// the capability its type requires.
	ErrCapabilityMissing = errors.New("control lacks required capability")

	// ErrDispatchMismatch indicates recorded parameters that do not
	// follow the schema of the control type.
	ErrDispatchMismatch = errors.New("recorded parameters do not match control type")

	// ErrItemNotFound indicates a selector item that matches neither the
	// recorded text nor the recorded index.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemDisabled indicates a selector item that cannot be selected.
	ErrItemDisabled = errors.New("item is disabled")
)

// ReplayError describes a failure to apply a command to a control.
type ReplayError struct {
	Control string
	Type    macro.ControlType
	Detail  string
	Err     error
}

// Error implements the error interface.
func (e *ReplayError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %q: %v", e.Type, e.Control, e.Err)
	}
	return fmt.Sprintf("%s %q: %s: %v", e.Type, e.Control, e.Detail, e.Err)
}

// Unwrap returns the failure kind.
func (e *ReplayError) Unwrap() error {
	return e.Err
}
