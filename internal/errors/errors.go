package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error code constants reported to MCP clients.
const (
	CodeInvalidParams     = "INVALID_PARAMS"
	CodeUnknownSource     = "UNKNOWN_SOURCE"
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeEmptyResult       = "EMPTY_RESULT"
	CodeAllSourcesFailed  = "ALL_SOURCES_FAILED"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeEncodeFailed      = "ENCODE_FAILED"
	CodeCacheFailed       = "CACHE_FAILED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// Error represents a cnstock error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	wrapped error
	Code    string
	Message string
}

// Error returns the error message, implementing the error interface.
func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, supporting errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// New creates a new cnstock error with the given code and message.
func New(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new cnstock error that wraps an underlying error.
func Wrap(code string, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		wrapped: err,
	}
}

// Code extracts the error code from an error.
// Returns an empty string if the error is not a cnstock error.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var cnErr *Error
	if errors.As(err, &cnErr) {
		return cnErr.Code
	}
	return ""
}

// Is checks if an error has a specific error code.
func Is(err error, code string) bool {
	return Code(err) == code
}

// Convenience constructors for each error code

// InvalidParams creates an INVALID_PARAMS error.
func InvalidParams(message string) *Error {
	return New(CodeInvalidParams, message)
}

// UnknownSource creates an UNKNOWN_SOURCE error.
func UnknownSource(name string) *Error {
	return New(CodeUnknownSource, fmt.Sprintf("data source %q is not supported for this operation", name))
}

// SourceUnavailable creates a SOURCE_UNAVAILABLE error wrapping the upstream cause.
func SourceUnavailable(source string, err error) *Error {
	return Wrap(CodeSourceUnavailable, fmt.Sprintf("data source %q failed", source), err)
}

// EmptyResult creates an EMPTY_RESULT error.
func EmptyResult(source string) *Error {
	return New(CodeEmptyResult, fmt.Sprintf("data source %q returned no rows", source))
}

// AllSourcesFailed creates an ALL_SOURCES_FAILED error summarizing every attempt.
func AllSourcesFailed(attempts []string) *Error {
	return New(CodeAllSourcesFailed, fmt.Sprintf("no data source returned usable data: %s", strings.Join(attempts, "; ")))
}

// UnsupportedFormat creates an UNSUPPORTED_FORMAT error.
func UnsupportedFormat(format string) *Error {
	return New(CodeUnsupportedFormat, fmt.Sprintf("output format %q is not supported", format))
}

// EncodeFailed creates an ENCODE_FAILED error wrapping the underlying cause.
func EncodeFailed(format string, err error) *Error {
	return Wrap(CodeEncodeFailed, fmt.Sprintf("failed to encode table as %s", format), err)
}

// CacheFailed creates a CACHE_FAILED error wrapping the underlying cause.
func CacheFailed(err error) *Error {
	return Wrap(CodeCacheFailed, "cache operation failed", err)
}

// Internal creates an INTERNAL_ERROR error wrapping the underlying cause.
func Internal(err error) *Error {
	return Wrap(CodeInternalError, "internal error", err)
}
