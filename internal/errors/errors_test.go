package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrValidationError(t *testing.T) {
	err := &ErrValidation{Field: "quantity", Message: "must not be negative"}
	if got, want := err.Error(), "quantity: must not be negative"; got != want {
		t.Fatalf("unexpected error string: got %q want %q", got, want)
	}
}

func TestIsValidation(t *testing.T) {
	wrapped := fmt.Errorf("add position: %w", &ErrValidation{Field: "name", Message: "is required"})
	if !IsValidation(wrapped) {
		t.Fatal("expected wrapped validation error to be detected")
	}
	if IsValidation(errors.New("disk full")) {
		t.Fatal("plain error must not be reported as validation error")
	}
}

func TestErrNotFoundWrapping(t *testing.T) {
	err := fmt.Errorf("position 7: %w", ErrNotFound)
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected errors.Is to match ErrNotFound")
	}
}
