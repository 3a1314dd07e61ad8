package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInvalidInput covers structurally bad requests: unknown columns,
	// empty dependent-variable lists, projection component counts that
	// exceed the available columns.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData covers inputs that survive validation but cannot
	// support the test: fewer than 2 groups, non-positive degrees of freedom.
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: column %q not present in table", ErrInvalidInput, column)
}

func NewInvalidInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

func NewInsufficientDataError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, reason)
}

// Error checking helpers
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
