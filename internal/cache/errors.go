package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingEntry is matched by errors for a named entry that does not exist.
	ErrMissingEntry = errors.New("entry not found")
	// ErrInvalidTarget is returned for a malformed Target.
	ErrInvalidTarget = errors.New("invalid target")
)

// MissingEntryError reports the schema and name that could not be found.
type MissingEntryError struct {
	Schema string
	Name   string
}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("%s %q not found in repo cache", e.Schema, e.Name)
}

// Is reports whether target is ErrMissingEntry.
func (e *MissingEntryError) Is(target error) bool {
	return target == ErrMissingEntry
}
