// Package errors provides structured error types for the stanza application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the resolver and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation and parse failures
//   - NOT_FOUND_*: Resource not found
//   - *_CONFLICT: Requests the lockfile path cannot honor
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeLockedDepNotFound, "no locked version of %q", name)
//	if errors.Is(err, errors.ErrCodeLockedDepNotFound) {
//	    // Handle missing dependency
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInstallFailed, origErr, "pip install %s", pkg)
//
// # Skipping environments
//
// [SkipEnvironment] is a control signal rather than a failure: it tells the
// host that an environment is intentionally out of scope and nothing should
// be installed for it. Use [Skip] to construct one and [IsSkip] to detect it.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation and parse errors
	ErrCodeInvalidLockfile Code = "INVALID_LOCKFILE"
	ErrCodeInvalidProject  Code = "INVALID_PROJECT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeLockedDepNotFound Code = "NOT_FOUND_LOCKED_DEP"
	ErrCodeExtraNotFound     Code = "NOT_FOUND_EXTRA"
	ErrCodeVenvNotFound      Code = "NOT_FOUND_VENV"

	// Requests the lockfile path cannot honor
	ErrCodeVersionConflict Code = "VERSION_CONFLICT_LOCKED_DEP"

	// Installation errors
	ErrCodeInstallFailed Code = "INSTALL_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// SkipEnvironment signals that processing for an environment should be
// abandoned without treating it as a failure. Provisioning and isolated
// build environments are handled by the host tool itself, as are projects
// that do not use a lockfile at all.
type SkipEnvironment struct {
	Reason string
}

// Error implements the error interface.
func (e *SkipEnvironment) Error() string {
	return e.Reason
}

// Skip creates a SkipEnvironment signal with a formatted reason.
func Skip(format string, args ...any) *SkipEnvironment {
	return &SkipEnvironment{Reason: fmt.Sprintf(format, args...)}
}

// IsSkip reports whether err is a SkipEnvironment signal.
func IsSkip(err error) bool {
	var s *SkipEnvironment
	return errors.As(err, &s)
}
