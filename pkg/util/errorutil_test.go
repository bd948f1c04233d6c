package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainError_PassesThroughDomainErrors(t *testing.T) {
	src := NewConflict("already reviewed", map[string]any{"check_in_id": "c1"})
	wrapped := fmt.Errorf("approve: %w", src)

	got := ToDomainError(wrapped)
	if got.Code != CodeConflict {
		t.Errorf("Code = %q, want %q", got.Code, CodeConflict)
	}
	if got.HTTPStatus != http.StatusConflict {
		t.Errorf("HTTPStatus = %d, want %d", got.HTTPStatus, http.StatusConflict)
	}
	if got.Details["check_in_id"] != "c1" {
		t.Errorf("Details lost: %v", got.Details)
	}
}

func TestToDomainError_UnknownIsStorageFailure(t *testing.T) {
	cause := errors.New("connection reset")
	got := ToDomainError(cause)
	if got.Code != CodeStorageFailure {
		t.Errorf("Code = %q, want %q", got.Code, CodeStorageFailure)
	}
	if got.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want 500", got.HTTPStatus)
	}
	if !errors.Is(got, cause) {
		t.Error("storage failure should unwrap to its cause")
	}
}

func TestToDomainError_Deadline(t *testing.T) {
	got := ToDomainError(fmt.Errorf("query: %w", context.DeadlineExceeded))
	if got.Code != CodeTimeout {
		t.Errorf("Code = %q, want %q", got.Code, CodeTimeout)
	}
}

func TestToDomainError_Nil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Error("ToDomainError(nil) should be nil")
	}
	if MapError(nil) != nil {
		t.Error("MapError(nil) should be nil")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewForbidden("nope"))
	if !HasCode(err, CodeForbidden) {
		t.Error("HasCode(FORBIDDEN) = false, want true")
	}
	if HasCode(err, CodeNotFound) {
		t.Error("HasCode(NOT_FOUND) = true, want false")
	}
	if HasCode(errors.New("plain"), CodeForbidden) {
		t.Error("plain errors carry no code")
	}
}

func TestNewNotFound_DefaultsDetails(t *testing.T) {
	err := NewNotFound("objective", nil)
	de := ToDomainError(err)
	if de.Details == nil {
		t.Error("Details should default to an empty map")
	}
	if de.Message != "objective not found" {
		t.Errorf("Message = %q", de.Message)
	}
}
