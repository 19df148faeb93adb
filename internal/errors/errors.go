// Package errors provides the coded error type shared by export and import.
package errors

import (
	stderrors "errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an error that carries no code.
	CodeUnknown Code = "UNKNOWN"

	// Import aborts
	CodeStructural          Code = "STRUCTURAL_ERROR"
	CodeVersionIncompatible Code = "VERSION_INCOMPATIBLE"

	// Export aborts
	CodeNoExportableContent Code = "NO_EXPORTABLE_CONTENT"

	// Entity-level problems, downgraded to warnings by the orchestrators
	CodeAssetMissing        Code = "ASSET_MISSING"
	CodeReferenceUnresolved Code = "REFERENCE_UNRESOLVED"
	CodeRemoteFetchFailure  Code = "REMOTE_FETCH_FAILURE"

	CodeInternal Code = "INTERNAL_ERROR"
)

// HTTPStatus maps a code to the status the API answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeStructural, CodeNoExportableContent:
		return http.StatusBadRequest
	case CodeVersionIncompatible:
		return http.StatusUnprocessableEntity
	case CodeAssetMissing, CodeReferenceUnresolved:
		return http.StatusNotFound
	case CodeRemoteFetchFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Additional context, e.g. the offending path
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
