package models

import (
	"errors"
	"fmt"
	"strings"
)

// fieldError is a single field-level validation failure. It matches ErrValidation via errors.Is.
type fieldError string

// Error implements the error interface.
func (e fieldError) Error() string { return string(e) }

// Is lets errors.Is(err, ErrValidation) match any fieldError.
func (e fieldError) Is(target error) bool { return target == ErrValidation }

// Sentinel errors for request validation.
var (
	ErrMissingID        error = fieldError("id is required")
	ErrMissingType      error = fieldError("type is required")
	ErrMissingSource    error = fieldError("source_id is required")
	ErrMissingTarget    error = fieldError("target_id is required")
	ErrMissingStatus    error = fieldError("status is required")
	ErrSelfRelationship error = fieldError("source and target must differ")
)

// Sentinel errors for entity lookups.
var (
	ErrNodeNotFound         = errors.New("node not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
)

// ErrDuplicateRelationship indicates a unique (source, target, type) violation (maps to HTTP 409 Conflict).
var ErrDuplicateRelationship = errors.New("duplicate relationship")

// ErrNotAllowed indicates that policy refused to establish a relationship.
var ErrNotAllowed = errors.New("relationship not allowed")

// ErrValidation is matched by every *ValidationError and field-level error via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError collects every structural problem found in a node or relationship.
type ValidationError struct {
	Errors []string `json:"errors"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Errors, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fieldError(fmt.Sprintf("%s exceeds maximum length of %d", field, maxLen))
}

// ErrInvalidEnum returns an error for a value outside a field's enumeration.
func ErrInvalidEnum(field, value string) error {
	return fieldError(fmt.Sprintf("%s has unknown value %q", field, value))
}

// ErrOutOfRange returns an error for a numeric field outside [lo, hi].
func ErrOutOfRange(field string, lo, hi float64) error {
	return fieldError(fmt.Sprintf("%s must be between %g and %g", field, lo, hi))
}

// ErrNegative returns an error for a counter that must not be negative.
func ErrNegative(field string) error {
	return fieldError(fmt.Sprintf("%s must not be negative", field))
}
