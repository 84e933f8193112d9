// Package errors provides structured error types for chaosgame.
//
// Errors carry a machine-readable [Code] so that callers can tell apart the
// remediation paths of a failed run:
//   - INVALID_CONFIGURATION: fix the animation descriptor; nothing was produced
//   - RENDER_FAILURE: the simulation must be run again; written frames are partial
//   - ENCODING_FAILURE: frames exist on disk; only the encoder needs to be retried
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "vertex count must be >= 3, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidConfiguration) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeEncodingFailure, runErr, "ffmpeg exited")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Setup errors
	ErrCodeInvalidConfiguration Code = "INVALID_CONFIGURATION"

	// Run errors
	ErrCodeRenderFailure   Code = "RENDER_FAILURE"
	ErrCodeEncodingFailure Code = "ENCODING_FAILURE"
	ErrCodeCanceled        Code = "CANCELED"

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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsRetryable reports whether the failure can be retried without re-running
// the simulation. Only encoding failures qualify: the frames are already on disk.
func IsRetryable(err error) bool {
	return Is(err, ErrCodeEncodingFailure)
}

// Invalid is shorthand for an INVALID_CONFIGURATION error.
func Invalid(format string, args ...any) *Error {
	return New(ErrCodeInvalidConfiguration, format, args...)
}
