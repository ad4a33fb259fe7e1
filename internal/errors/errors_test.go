package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		{
			name:     "ErrUnknownEvent inside ClassificationError",
			err:      NewClassificationError("type", "bogus", ErrUnknownEvent),
			target:   ErrUnknownEvent,
			expected: true,
		},
		{
			name:     "ErrSecretMismatch inside AuthenticationError",
			err:      NewAuthenticationError(ErrSecretMismatch),
			target:   ErrSecretMismatch,
			expected: true,
		},
		{
			name:     "ErrGroupMismatch is not ErrSecretMismatch",
			err:      NewAuthenticationError(ErrGroupMismatch),
			target:   ErrSecretMismatch,
			expected: false,
		},
		{
			name:     "joined errors keep sentinels",
			err:      errors.Join(ErrRegistryFrozen, errors.New("additional context")),
			target:   ErrRegistryFrozen,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.expected {
				t.Errorf("errors.Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassificationError(t *testing.T) {
	err := NewClassificationError("type", "bogus", ErrUnknownEvent)

	expected := `classification failed on type "bogus": unknown event`
	if err.Error() != expected {
		t.Errorf("expected error '%s', got '%s'", expected, err.Error())
	}

	noToken := NewClassificationError("group_id", "", ErrMissingField)
	expected = "classification failed on group_id: missing required field"
	if noToken.Error() != expected {
		t.Errorf("expected error '%s', got '%s'", expected, noToken.Error())
	}
}

func TestKindPredicates(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"classification", NewClassificationError("type", "x", ErrUnknownEvent), IsClassification, true},
		{"wrapped classification", fmt.Errorf("build: %w", NewClassificationError("type", "x", ErrUnknownEvent)), IsClassification, true},
		{"authentication", NewAuthenticationError(ErrSecretMismatch), IsAuthentication, true},
		{"authentication is not classification", NewAuthenticationError(ErrSecretMismatch), IsClassification, false},
		{"registration", NewRegistrationError(`regex "("`, ErrInvalidPredicate), IsRegistration, true},
		{"handler", NewHandlerError("keyboard", "message_new", base), IsHandler, true},
		{"plain error", base, IsHandler, false},
		{"nil", nil, IsHandler, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandlerError(t *testing.T) {
	baseErr := errors.New("connection timeout")
	err := NewHandlerError("weather", "message_new", baseErr)

	if !errors.Is(err, baseErr) {
		t.Error("expected error to wrap base error")
	}

	expected := "handler weather (event=message_new): connection timeout"
	if err.Error() != expected {
		t.Errorf("expected error '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("label", "exceeds 40 characters")

	expected := "validation failed on label: exceeds 40 characters"
	if err.Error() != expected {
		t.Errorf("expected error '%s', got '%s'", expected, err.Error())
	}
}
