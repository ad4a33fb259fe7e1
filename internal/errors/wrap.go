package errors

import (
	"errors"
	"fmt"
)

// ErrorWrapper attaches a handler name, an operation and a user-facing
// message to errors returned from bot handlers.
type ErrorWrapper struct {
	operation string
	handler   string
}

// NewWrapper creates a new error wrapper for the given handler and operation.
func NewWrapper(handler, operation string) *ErrorWrapper {
	return &ErrorWrapper{
		handler:   handler,
		operation: operation,
	}
}

// Wrap wraps an error with operation context.
// Returns nil if err is nil.
func (w *ErrorWrapper) Wrap(err error, userMessage string) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Operation:   w.operation,
		Handler:     w.handler,
		Cause:       err,
		UserMessage: userMessage,
	}
}

// Wrapf wraps an error with formatted message.
func (w *ErrorWrapper) Wrapf(err error, userMessageFormat string, args ...any) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Operation:   w.operation,
		Handler:     w.handler,
		Cause:       err,
		UserMessage: fmt.Sprintf(userMessageFormat, args...),
	}
}

// WrappedError carries both the internal cause and a message safe to send to the chat.
type WrappedError struct {
	Operation   string // e.g. "render_keyboard"
	Handler     string // registered handler name
	Cause       error
	UserMessage string
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("[%s:%s] %s: %v", e.Handler, e.Operation, e.UserMessage, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// GetUserMessage returns the user-facing message found anywhere in err's chain.
// Returns fallback when the chain holds no WrappedError.
func GetUserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var wrapped *WrappedError
	if errors.As(err, &wrapped) {
		return wrapped.UserMessage
	}
	return fallback
}
