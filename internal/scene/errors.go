package scene

import (
	"errors"
	"fmt"
)

// ErrMissingField is matched by every MissingFieldError via errors.Is.
var ErrMissingField = errors.New("missing field")

// MissingFieldError reports a sequence record that lacks a required key.
type MissingFieldError struct {
	Field string
	Path  string // empty for in-memory records
}

func (e *MissingFieldError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("missing field %q", e.Field)
	}
	return fmt.Sprintf("%s: missing field %q", e.Path, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// MissingField builds a MissingFieldError for an in-memory record.
func MissingField(field string) error {
	return &MissingFieldError{Field: field}
}
