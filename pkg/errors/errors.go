// Package errors provides structured error types for Gera Post.
//
// Every failure that reaches a user carries a machine-readable [Code] so the
// CLI and the terminal editor can decide how loudly to report it:
//   - IMPORT_*: the metadata importer could not produce a result
//   - EXPORT_*: the export pipeline failed and unwound
//   - PERSISTENCE_*: a draft read or write failed
//   - AUTH_*: sign-in failed or was cancelled
//   - INVALID_*: input validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidTemplate, "unknown template %d", id)
//	if errors.Is(err, errors.ErrCodeInvalidTemplate) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeImportFailed, origErr, "could not read %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidTemplate Code = "INVALID_TEMPLATE"
	ErrCodeInvalidURL      Code = "INVALID_URL"
	ErrCodeInvalidColor    Code = "INVALID_COLOR"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Metadata import errors
	ErrCodeImportFailed Code = "IMPORT_FAILED"
	ErrCodeImportEmpty  Code = "IMPORT_EMPTY"

	// Export errors
	ErrCodeExportBusy        Code = "EXPORT_BUSY"
	ErrCodeExportNodeMissing Code = "EXPORT_NODE_MISSING"
	ErrCodeExportImage       Code = "EXPORT_IMAGE"
	ErrCodeExportRaster      Code = "EXPORT_RASTER"
	ErrCodeExportEncode      Code = "EXPORT_ENCODE"
	ErrCodeExportWrite       Code = "EXPORT_WRITE"

	// Persistence errors
	ErrCodePersistenceRead  Code = "PERSISTENCE_READ"
	ErrCodePersistenceWrite Code = "PERSISTENCE_WRITE"

	// Authentication errors
	ErrCodeAuthCanceled           Code = "AUTH_CANCELED"
	ErrCodeAuthInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	ErrCodeAuthProviderDisabled   Code = "AUTH_PROVIDER_DISABLED"
	ErrCodeAuthMisconfigured      Code = "AUTH_MISCONFIGURED"

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

// Is matches any *Error target with the same code, so [errors.Is] compares
// codes rather than pointers.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
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

// Is reports whether any *Error in err's tree has the given code. Joined
// errors are searched branch by branch, so every code of a multi-field
// validation failure can be found.
func Is(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
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

// Silent reports whether err should be swallowed without telling the user.
// A sign-in popup closed by the user is the only such case.
func Silent(err error) bool {
	return Is(err, ErrCodeAuthCanceled)
}

// Category groups codes by the component that raises them.
func (c Code) Category() string {
	switch c {
	case ErrCodeImportFailed, ErrCodeImportEmpty, ErrCodeInvalidURL:
		return "import"
	case ErrCodeExportBusy, ErrCodeExportNodeMissing, ErrCodeExportImage,
		ErrCodeExportRaster, ErrCodeExportEncode, ErrCodeExportWrite:
		return "export"
	case ErrCodePersistenceRead, ErrCodePersistenceWrite:
		return "persistence"
	case ErrCodeAuthCanceled, ErrCodeAuthInvalidCredentials,
		ErrCodeAuthProviderDisabled, ErrCodeAuthMisconfigured:
		return "auth"
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidTemplate,
		ErrCodeInvalidColor, ErrCodeInvalidPath:
		return "input"
	default:
		return "internal"
	}
}
