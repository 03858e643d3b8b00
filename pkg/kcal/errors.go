package kcal

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a write request carries no payload.
	ErrEmptyInput = errors.New("empty input")

	// ErrMalformed is returned when a payload does not contain the required
	// integer fields.
	ErrMalformed = errors.New("malformed input")

	// ErrRejected is returned when an apply request carries a command other
	// than CommandApply.
	ErrRejected = errors.New("apply command rejected")
)

// Result codes recorded as the last apply status.
const (
	StatusOK       = 0
	StatusRejected = -22 // EINVAL
	StatusIOError  = -5  // EIO
)

// RefreshError is returned by Apply when the panel refresh reports a
// nonzero result code.
type RefreshError struct {
	Code int
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("display refresh failed with code %d", e.Code)
}

// IsValidationError reports whether err was caused by an empty or malformed
// payload.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrMalformed)
}
