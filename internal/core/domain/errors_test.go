package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError("GW-TEST-0001", "something broke")
	if got := err.Error(); got != "[GW-TEST-0001] something broke" {
		t.Errorf("Error() = %q", got)
	}

	withDetails := err.WithDetails("token is required")
	if got := withDetails.Error(); got != "[GW-TEST-0001] something broke: token is required" {
		t.Errorf("Error() with details = %q", got)
	}
}

func TestDomainError_Is(t *testing.T) {
	wrapped := ErrTokenNotFound.WithDetails("token abc")
	if !errors.Is(wrapped, ErrTokenNotFound) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(wrapped, ErrNotOwner) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := ErrStorage.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestGetErrorCode(t *testing.T) {
	if code := GetErrorCode(ErrNotOwner.WithDetails("x")); code != "GW-TOKN-4030" {
		t.Errorf("GetErrorCode = %q, want GW-TOKN-4030", code)
	}
	if code := GetErrorCode(fmt.Errorf("plain")); code != "" {
		t.Errorf("GetErrorCode on plain error = %q, want empty", code)
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrRandomSource, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
	if !IsDomainError(fmt.Errorf("wrap: %w", ErrRandomSource), "GW-SYS-5002") {
		t.Error("IsDomainError should see through wrapping")
	}
	if IsDomainError(fmt.Errorf("plain"), "") {
		t.Error("IsDomainError should reject non-domain errors")
	}
}
