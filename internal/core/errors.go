// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Config errors: fatal, detected before any side effect
	ErrConfig        = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Local filesystem errors (archive creation, local listing/deletion)
	ErrIO = &Error{Code: "IO_FAILED", Message: "filesystem operation failed"}

	// Transport errors (upload, remote listing, remote deletion)
	ErrTransport = &Error{Code: "TRANSPORT_FAILED", Message: "transport operation failed"}

	// Per-artifact timestamp parse failure; such artifacts are unmanaged
	// and never candidates for deletion
	ErrParse = &Error{Code: "NAME_UNPARSABLE", Message: "artifact name has no valid timestamp"}

	// Notification delivery failure; logged, never escalated
	ErrNotify = &Error{Code: "NOTIFY_FAILED", Message: "notification delivery failed"}

	// Classifier self-check failure; indicates a bug, not bad input
	ErrPartition = &Error{Code: "PARTITION_VIOLATED", Message: "keep/delete sets do not partition input"}
)
