package macro

import "github.com/google/uuid"

// NewIdentifier returns a new random unique identifier.
func NewIdentifier() string {
	return uuid.NewString()
}

// ValidIdentifier reports whether id parses as a UUID.
func ValidIdentifier(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
