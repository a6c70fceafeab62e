package codec

import (
	"errors"
	"fmt"
)

// Decode failure kinds. Every *DecodeError wraps one of these.
var (
	// ErrEmptyInput indicates there was nothing to decode.
	ErrEmptyInput = errors.New("no XML content")

	// ErrMalformed indicates markup that is not well formed, or a document
	// whose root is not a macro group.
	ErrMalformed = errors.New("malformed macro XML")

	// ErrMissingVersion indicates a root element without a version.
	ErrMissingVersion = errors.New("missing version")

	// ErrUnsupportedVersion indicates a version the reader does not know.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrMissingAttribute indicates a structural attribute that is absent.
	ErrMissingAttribute = errors.New("missing required attribute")

	// ErrInvalidAttribute indicates a structural attribute with an
	// unusable value.
	ErrInvalidAttribute = errors.New("invalid attribute value")
)

// DecodeError is a fatal decode failure. The group passed to Decode is
// empty whenever a DecodeError is returned.
type DecodeError struct {
	Line    int
	Column  int
	Message string
	// Version is the offending version for ErrUnsupportedVersion.
	Version string
	Err     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

// Unwrap returns the failure kind.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
