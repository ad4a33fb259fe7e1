// Package errors provides domain-specific error types and sentinel errors
// for the classification, registration and dispatch stages of the bot.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrUnknownEvent indicates an event token outside the supported set.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrMissingField indicates a payload lacks a field its event kind requires.
	ErrMissingField = errors.New("missing required field")

	// ErrSecretMismatch indicates the callback secret differs from the configured one.
	ErrSecretMismatch = errors.New("secret mismatch")

	// ErrGroupMismatch indicates the callback targets a different community.
	ErrGroupMismatch = errors.New("group id mismatch")

	// ErrRegistryFrozen indicates a registration attempted after the registry was sealed.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrInvalidPredicate indicates a malformed match predicate.
	ErrInvalidPredicate = errors.New("invalid predicate")

	// ErrHandlerPanic indicates a handler panicked and was recovered.
	ErrHandlerPanic = errors.New("handler panicked")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ClassificationError reports an inbound payload that cannot be turned into a Context.
type ClassificationError struct {
	Field  string // payload field at fault, e.g. "type" or "group_id"
	Token  string // offending raw value, if any
	Reason error
}

func (e *ClassificationError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("classification failed on %s %q: %v", e.Field, e.Token, e.Reason)
	}
	return fmt.Sprintf("classification failed on %s: %v", e.Field, e.Reason)
}

func (e *ClassificationError) Unwrap() error {
	return e.Reason
}

// NewClassificationError creates a new classification error.
func NewClassificationError(field, token string, reason error) *ClassificationError {
	return &ClassificationError{
		Field:  field,
		Token:  token,
		Reason: reason,
	}
}

// AuthenticationError reports a callback rejected before any handler ran.
type AuthenticationError struct {
	Reason error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Reason)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Reason
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(reason error) *AuthenticationError {
	return &AuthenticationError{Reason: reason}
}

// RegistrationError is raised at setup time when a handler cannot be registered.
type RegistrationError struct {
	Predicate string
	Err       error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s: %v", e.Predicate, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// NewRegistrationError creates a new registration error.
func NewRegistrationError(predicate string, err error) *RegistrationError {
	return &RegistrationError{
		Predicate: predicate,
		Err:       err,
	}
}

// HandlerError wraps a failure of user handling logic, scoped to one dispatch.
type HandlerError struct {
	Handler string
	Event   string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s (event=%s): %v", e.Handler, e.Event, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// NewHandlerError creates a new handler error.
func NewHandlerError(handler, event string, err error) *HandlerError {
	return &HandlerError{
		Handler: handler,
		Event:   event,
		Err:     err,
	}
}

// IsClassification reports whether err is or wraps a ClassificationError.
func IsClassification(err error) bool {
	var target *ClassificationError
	return errors.As(err, &target)
}

// IsAuthentication reports whether err is or wraps an AuthenticationError.
func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsRegistration reports whether err is or wraps a RegistrationError.
func IsRegistration(err error) bool {
	var target *RegistrationError
	return errors.As(err, &target)
}

// IsHandler reports whether err is or wraps a HandlerError.
func IsHandler(err error) bool {
	var target *HandlerError
	return errors.As(err, &target)
}
