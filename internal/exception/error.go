package exception

import (
	"errors"
	"fmt"
)

// ErrRecordNotFound custom database error for failure to find record
var ErrRecordNotFound = errors.New("record not found")

// ErrNoTarget returned when a scan request has no target
var ErrNoTarget = errors.New("scan target cannot be empty")

// ErrNoPorts returned when a scan request has an empty port set
var ErrNoPorts = errors.New("port set cannot be empty")

// ErrInvalidConcurrency returned for a non-positive concurrency limit
var ErrInvalidConcurrency = errors.New("concurrency limit must be greater than zero")

// ErrInvalidTimeout returned for a non-positive per-port timeout
var ErrInvalidTimeout = errors.New("timeout must be greater than zero")

// InputError represents a mistake in user provided input
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("input error: %s", e.Message)
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewInputError returns a new InputError for the given field
func NewInputError(field, msg string) error {
	return &InputError{Field: field, Message: msg}
}
