// Package apperrors provides the error kinds shared by the server and the client.
//
// Every operation either returns a well-formed result or one of:
//   - ValidationError: malformed or missing input
//   - NotFoundError: the referenced id is absent
//   - InvalidTransitionError: a status regression was attempted
//   - TransportError: network or server failure, passed through as-is
//
// Use the Is* helpers rather than type assertions so wrapped errors match.
package apperrors

import (
	"errors"
	"fmt"
)

// Wire codes for each kind, used in JSON error bodies
const (
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeInvalidTransition = "invalid_transition"
	CodeInternal          = "internal_error"
	CodeUnauthorized      = "unauthorized"
	CodeRateLimited       = "rate_limited"
)

// ValidationError indicates malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a validation error for field
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// Required is shorthand for a missing required field
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}

// NotFoundError indicates the referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidTransitionError indicates an illegal status change.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// NewInvalidTransitionError creates a transition error
func NewInvalidTransitionError(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// TransportError wraps network or server failures.
//
// StatusCode is zero when the request never got a response.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("transport error: status %d: %s: %v", e.StatusCode, e.Message, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("transport error: status %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error
func NewTransportError(status int, msg string, err error) *TransportError {
	return &TransportError{StatusCode: status, Message: msg, Err: err}
}

// IsValidation checks if err is or wraps a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound checks if err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidTransition checks if err is or wraps an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsTransport checks if err is or wraps a TransportError
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// Code returns the wire code for err's kind
func Code(err error) string {
	switch {
	case IsValidation(err):
		return CodeValidation
	case IsNotFound(err):
		return CodeNotFound
	case IsInvalidTransition(err):
		return CodeInvalidTransition
	}
	return CodeInternal
}
