// Package errors defines the error taxonomy shared by the pricing pipelines.
// Schema and validation errors are fatal to the operation that raised them;
// parse errors are recovered locally and only reported as warnings.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New is an alias for the standard library errors.New.
var New = errors.New

var (
	// ErrSchema indicates that a required column is absent from a source table
	ErrSchema = errors.New("schema error")

	// ErrInvalidInput indicates that a caller supplied parameter was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrParse indicates that a numeric cell could not be parsed
	ErrParse = errors.New("parse error")
)

// SchemaError reports the required columns a source table is missing.
type SchemaError struct {
	Source  string
	Missing []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("missing columns: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("file %s is missing columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(source string, missing ...string) *SchemaError {
	return &SchemaError{Source: source, Missing: missing}
}

// ValidationError represents a rejected parameter.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ParseError records a numeric cell that was coerced to zero.
type ParseError struct {
	Source string
	Row    int
	Column string
	Value  string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s row %d: column %s has non-numeric value %q", e.Source, e.Row, e.Column, e.Value)
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IsSchemaError reports whether err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// AsSchemaError extracts a SchemaError from err.
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
