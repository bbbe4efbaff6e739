package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrEmptyQuery       = errors.New("empty query")
	ErrEmptyMessage     = errors.New("empty message")
	ErrEmptyLocation    = errors.New("empty location name")
	ErrLimitOutOfRange  = errors.New("limit out of range")
	ErrPriceOutOfRange  = errors.New("price level out of range")
	ErrPriceRangeFlip   = errors.New("min price exceeds max price")
	ErrInvalidLatitude  = errors.New("latitude out of range")
	ErrInvalidLongitude = errors.New("longitude out of range")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidRole      = errors.New("invalid chat role")
)

// ValidationError wraps a sentinel with field context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
