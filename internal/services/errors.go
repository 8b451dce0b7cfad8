package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds for sweet operations, modeled as a closed set so callers
// dispatch with errors.Is / errors.As rather than matching message text.
var (
	// ErrSweetNotFound is returned when no sweet exists for the given ID.
	ErrSweetNotFound = errors.New("Sweet not found")
	// ErrOutOfStock is returned by a purchase against a sweet whose
	// quantity is exactly zero, regardless of the requested amount.
	ErrOutOfStock = errors.New("Sweet is out of stock")
	// ErrInvalidQuantity is returned when a purchase or restock amount is
	// zero or negative.
	ErrInvalidQuantity = errors.New("Quantity must be a positive number")
)

// InsufficientQuantityError is returned by a purchase whose amount exceeds
// the available quantity. It carries the quantity still available so the
// caller can report it.
type InsufficientQuantityError struct {
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("Insufficient quantity. Available: %d", e.Available)
}

// ValidationError reports the fields of a sweet that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
