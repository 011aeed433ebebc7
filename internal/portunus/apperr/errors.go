// Package apperr holds the error kinds shared by the registry, the evaluator
// and the stores. Transports translate them into status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrNotFound         = errors.New("not found")
	ErrInUse            = errors.New("in use")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// ValidationError reports a malformed field on a schedule, person or request.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func Duplicate(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrDuplicateID)
}

func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// InUse reports a blocked delete. refs < 0 means the count is unknown.
func InUse(kind, id string, refs int) error {
	if refs < 0 {
		return fmt.Errorf("%s %q is still referenced: %w", kind, id, ErrInUse)
	}
	return fmt.Errorf("%s %q referenced by %d record(s): %w", kind, id, refs, ErrInUse)
}

func InvalidTimestamp(raw string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%q: %w", raw, ErrInvalidTimestamp)
	}
	return fmt.Errorf("%q: %w: %v", raw, ErrInvalidTimestamp, cause)
}
