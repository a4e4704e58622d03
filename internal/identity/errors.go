package identity

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller-fixable validation failures: empty labels,
// embeddings whose length does not match the store dimension, and embeddings
// with NaN or infinite components. Wrapped errors carry the detail; match
// with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// DuplicateError is returned when a label is already registered. The store is
// left unchanged; the caller can pick a different label or treat the identity
// as already enrolled.
type DuplicateError struct {
	Label string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("identity %q is already registered", e.Label)
}

// IsDuplicate reports whether err is a DuplicateError.
func IsDuplicate(err error) bool {
	var dup *DuplicateError
	return errors.As(err, &dup)
}

func invalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
