// Package errors provides standardized error types and helpers for the recordkit codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnsupported indicates an unsupported operation or item type
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "thing", "blob", "vocabulary")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation (may be redacted)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// SerializationError indicates an item could not be written to XML,
// typically because a mandatory element or attribute is missing.
type SerializationError struct {
	Type    string // Item or value type being serialized (e.g., "weight", "codable-value")
	Element string // XML element that could not be produced
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *SerializationError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("cannot serialize %s: element %s: %s", e.Type, e.Element, e.Message)
	}
	return fmt.Sprintf("cannot serialize %s: %s", e.Type, e.Message)
}

func (e *SerializationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// DeserializationError indicates malformed or unexpected XML while
// parsing an item. It wraps the root cause when one exists.
type DeserializationError struct {
	Type    string // Item or value type being parsed
	Element string // XML element where parsing failed
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *DeserializationError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("cannot parse %s: element %s: %s", e.Type, e.Element, e.Message)
	}
	return fmt.Sprintf("cannot parse %s: %s", e.Type, e.Message)
}

func (e *DeserializationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or item type
type UnsupportedError struct {
	Feature string // Feature or item type that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewSerialization creates a SerializationError
func NewSerialization(itemType, element, message string) *SerializationError {
	return &SerializationError{
		Type:    itemType,
		Element: element,
		Message: message,
	}
}

// NewDeserialization creates a DeserializationError
func NewDeserialization(itemType, element, message string) *DeserializationError {
	return &DeserializationError{
		Type:    itemType,
		Element: element,
		Message: message,
	}
}

// NewDeserializationWrap creates a DeserializationError wrapping a root cause
func NewDeserializationWrap(itemType, element string, err error) *DeserializationError {
	return &DeserializationError{
		Type:    itemType,
		Element: element,
		Message: err.Error(),
		Err:     err,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
