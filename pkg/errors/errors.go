// Package errors provides structured error types for kintree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The engine's error taxonomy maps onto codes:
//   - DUPLICATE_ID: a person with the same identifier already exists
//   - NOT_FOUND: an identifier or dataset is unknown
//   - CYCLIC_REFERENCE: a person is (transitively) their own ancestor
//   - NOT_RELATED: no relationship path connects two people
//   - MALFORMED_JSON, MISSING_COLUMN, UNSUPPORTED_VERSION: import failures
//
// Structural defects inside a family graph (dangling links, one-sided spouse
// links) are not errors; they are reported as diagnostics by package forest.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateID, "person %d already exists", id)
//	if errors.Is(err, errors.ErrCodeDuplicateID) {
//	    // Handle duplicate
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedJSON, origErr, "decode people")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Store errors
	ErrCodeDuplicateID  Code = "DUPLICATE_ID"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Graph and query errors
	ErrCodeCyclicReference Code = "CYCLIC_REFERENCE"
	ErrCodeNotRelated      Code = "NOT_RELATED"
	ErrCodeSelfRelation    Code = "SELF_RELATION"

	// Serialization errors
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeMalformedJSON      Code = "MALFORMED_JSON"
	ErrCodeMissingColumn      Code = "MISSING_COLUMN"
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"

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
// It walks the whole error chain, so an *Error wrapped inside another *Error
// with a different code still matches.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// ColumnError reports a required CSV column that is absent from the header.
type ColumnError struct {
	Column string
}

// Error implements the error interface.
func (e *ColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// Code returns the error code for this error type.
func (e *ColumnError) Code() Code {
	return ErrCodeMissingColumn
}

// VersionError reports a GEDCOM header declaring an incompatible version.
type VersionError struct {
	Version string
}

// Error implements the error interface.
func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported GEDCOM version %q", e.Version)
}

// Code returns the error code for this error type.
func (e *VersionError) Code() Code {
	return ErrCodeUnsupportedVersion
}
