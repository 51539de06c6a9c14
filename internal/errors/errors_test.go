package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNoActiveSessionError(t *testing.T) {
	err := NewNoActiveSessionError("U1")

	expectedMsg := "no active search session for user 'U1'"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrNoActiveSession) {
		t.Error("Expected error to match ErrNoActiveSession sentinel")
	}

	if errors.Is(err, ErrPageOutOfRange) {
		t.Error("Error should not match ErrPageOutOfRange")
	}
}

func TestPageOutOfRangeError(t *testing.T) {
	err := NewPageOutOfRangeError(3, 2)

	expectedMsg := "page 3 is out of range (total pages: 2)"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrPageOutOfRange) {
		t.Error("Expected error to match ErrPageOutOfRange sentinel")
	}

	var target *PageOutOfRangeError
	if !errors.As(err, &target) || target.TotalPages != 2 {
		t.Errorf("Expected errors.As to expose TotalPages 2, got %+v", target)
	}
}

func TestDataUnavailableError(t *testing.T) {
	tests := []struct {
		name     string
		reason   string
		expected string
	}{
		{"with reason", "empty record set", "promotion data unavailable: empty record set"},
		{"without reason", "", "promotion data unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDataUnavailableError(tt.reason)
			if err.Error() != tt.expected {
				t.Errorf("Expected error message '%s', got '%s'", tt.expected, err.Error())
			}
			if !errors.Is(err, ErrDataUnavailable) {
				t.Error("Expected error to match ErrDataUnavailable sentinel")
			}
		})
	}
}

func TestPromotionNotFoundError(t *testing.T) {
	err := NewPromotionNotFoundError(42)

	expectedMsg := "promotion with ID '42' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}
	if !errors.Is(err, ErrPromotionNotFound) {
		t.Error("Expected error to match ErrPromotionNotFound sentinel")
	}
}

func TestValidationError(t *testing.T) {
	withField := NewValidationError("query", "must not be empty")
	if withField.Error() != "validation error for field 'query': must not be empty" {
		t.Errorf("Unexpected message: %s", withField.Error())
	}

	withoutField := NewValidationError("", "bad request")
	if withoutField.Error() != "validation error: bad request" {
		t.Errorf("Unexpected message: %s", withoutField.Error())
	}

	if !errors.Is(withField, ErrInvalidInput) {
		t.Error("Expected error to match ErrInvalidInput sentinel")
	}
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	wrapped := fmt.Errorf("paginate: %w", NewNoActiveSessionError("U2"))
	if !errors.Is(wrapped, ErrNoActiveSession) {
		t.Error("Expected wrapped error to match ErrNoActiveSession sentinel")
	}

	jobErr := fmt.Errorf("lookup: %w", NewJobNotFoundError("abc"))
	if !errors.Is(jobErr, ErrJobNotFound) {
		t.Error("Expected wrapped error to match ErrJobNotFound sentinel")
	}
}
