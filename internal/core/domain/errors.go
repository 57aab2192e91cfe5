package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "GW-TOKN-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support; two DomainErrors match on code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Argument errors (ARG). Raised before any I/O is attempted.
var (
	// ErrInvalidArgument indicates a malformed or wrong-typed argument.
	ErrInvalidArgument = NewDomainError("GW-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is empty.
	ErrMissingArgument = NewDomainError("GW-ARG-1002", "missing required argument")
)

// Token errors (TOKN).
var (
	// ErrTokenNotFound indicates the lookup did not match exactly one token
	// record. Zero and more-than-one matches are equally exceptional: a
	// duplicate token is a data-integrity violation, not a success.
	ErrTokenNotFound = NewDomainError("GW-TOKN-4040", "token not found or not unique")

	// ErrNotOwner indicates a revoke attempt by a non-owning user.
	ErrNotOwner = NewDomainError("GW-TOKN-4030", "token owned by another user")

	// ErrTokenConflict indicates an insert collided with an existing token.
	ErrTokenConflict = NewDomainError("GW-TOKN-4090", "token already exists")
)

// Directory errors (DIR).
var (
	// ErrUserNotFound indicates the directory lookup did not match exactly
	// one user record.
	ErrUserNotFound = NewDomainError("GW-DIR-4040", "user record not found or not unique")
)

// Authentication errors (AUTH). Used by the transport layer only.
var (
	// ErrUnauthorized indicates missing or invalid caller credentials.
	ErrUnauthorized = NewDomainError("GW-AUTH-4010", "authentication required")
)

// System errors (SYS).
var (
	// ErrInternal indicates an unexpected internal failure.
	ErrInternal = NewDomainError("GW-SYS-5000", "internal server error")

	// ErrStorage indicates an underlying persistence failure.
	ErrStorage = NewDomainError("GW-SYS-5001", "storage error")

	// ErrRandomSource indicates the secure random source is unavailable.
	// Fatal to the operation that needed it; never retried automatically.
	ErrRandomSource = NewDomainError("GW-SYS-5002", "secure random source unavailable")

	// ErrBadRequest indicates a malformed request body.
	ErrBadRequest = NewDomainError("GW-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("GW-SYS-4290", "too many requests")
)
