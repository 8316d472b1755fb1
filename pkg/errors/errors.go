// Package errors provides structured error types for SlideWeave.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes shared with layout diagnostics
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Most codes describe recoverable conditions. The style resolver, layout
// solver and effect synthesizer never return them as errors; they attach them
// to diagnostics (see package diag) and apply a fallback. Only the INVALID_*,
// *_NOT_FOUND and INTERNAL codes abort an invocation.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "slide %d has no root element", i)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "open deck %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Recoverable conditions. These are reported as diagnostics.
const (
	ErrCodeMalformedUnit           Code = "MALFORMED_UNIT"
	ErrCodeUnsupportedColor        Code = "UNSUPPORTED_COLOR"
	ErrCodeUnresolvedPercentage    Code = "UNRESOLVED_PERCENTAGE"
	ErrCodeEffectSourceUnavailable Code = "EFFECT_SOURCE_UNAVAILABLE"
	ErrCodeInvalidTreeShape        Code = "INVALID_TREE_SHAPE"
	ErrCodeUnknownProperty         Code = "UNKNOWN_PROPERTY"
	ErrCodeDeprecatedProperty      Code = "DEPRECATED_PROPERTY"
	ErrCodeUnknownValue            Code = "UNKNOWN_VALUE"
)

// Fatal conditions. These abort the invocation that hit them.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// Recoverable reports whether code names a condition that degrades to a
// fallback instead of aborting.
func (c Code) Recoverable() bool {
	switch c {
	case ErrCodeMalformedUnit, ErrCodeUnsupportedColor, ErrCodeUnresolvedPercentage,
		ErrCodeEffectSourceUnavailable, ErrCodeInvalidTreeShape, ErrCodeUnknownProperty,
		ErrCodeDeprecatedProperty, ErrCodeUnknownValue:
		return true
	}
	return false
}
