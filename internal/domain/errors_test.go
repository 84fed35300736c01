package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestStorageFaultWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageFault("record test", cause)

	if !errors.Is(err, cause) {
		t.Fatal("StorageFault should unwrap to its cause")
	}
	if !IsStorageFault(err) {
		t.Fatal("IsStorageFault should match")
	}
	if !IsStorageFault(fmt.Errorf("outer: %w", err)) {
		t.Fatal("IsStorageFault should match through wrapping")
	}

	var sf *StorageFault
	if !errors.As(err, &sf) {
		t.Fatal("errors.As should extract StorageFault")
	}
	if sf.Code() != "STORAGE_FAULT" {
		t.Fatalf("Code() = %q", sf.Code())
	}
	if !sf.Retryable() {
		t.Fatal("storage faults are retryable")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("missing placeholder")
	if !IsValidation(err) {
		t.Fatal("IsValidation should match")
	}
	if IsValidation(errors.New("other")) {
		t.Fatal("IsValidation should not match plain errors")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As should extract ValidationError")
	}
	if ve.Code() != "VALIDATION" {
		t.Fatalf("Code() = %q", ve.Code())
	}
}

func TestSentinels(t *testing.T) {
	wrapped := fmt.Errorf("user 42: %w", ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatal("wrapped ErrNotFound should match")
	}
	if errors.Is(wrapped, ErrAccessDenied) {
		t.Fatal("sentinels must not overlap")
	}
}
