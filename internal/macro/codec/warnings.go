package codec

import (
	"fmt"
	"strings"
)

// Warning is a recoverable problem found while decoding.
type Warning struct {
	Line    int
	Column  int
	Message string
}

// String formats the warning with its position.
func (w Warning) String() string {
	return fmt.Sprintf("Line=%d, Column=%d: %s", w.Line, w.Column, w.Message)
}

// Warnings is the list of warnings produced by one decode.
type Warnings []Warning

// String joins the warnings, one per line.
func (ws Warnings) String() string {
	lines := make([]string, len(ws))
	for i, w := range ws {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// Contains reports whether any warning message contains substr.
func (ws Warnings) Contains(substr string) bool {
	for _, w := range ws {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}
