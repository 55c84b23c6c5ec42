package observatory

import (
	"fmt"
	"strings"
)

// MissingFieldError is returned when a finished scan lacks required fields.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("scan response missing field(s): %s", strings.Join(e.Fields, ", "))
}

// ParseError is returned when a scan timestamp cannot be parsed.
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognised timestamp %q", e.Value)
}
