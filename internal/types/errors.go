package types

import (
	"errors"
	"fmt"
)

// ErrorCode is a namespaced code identifying a failure class. Codes are part
// of the boundary contract: callers branch on them, log pipelines index them.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Ingestion error codes
const (
	LOADER_NOT_FOUND ErrorCode = "LOADER_NOT_FOUND"
	LOAD_FAILED      ErrorCode = "LOAD_FAILED"
	TRANSFORM_FAILED ErrorCode = "TRANSFORM_FAILED"
	EMBEDDING_FAILED ErrorCode = "EMBEDDING_FAILED"
	STORAGE_FAILED   ErrorCode = "STORAGE_FAILED"
)

// Query error codes
const (
	QUERY_TIMEOUT          ErrorCode = "QUERY_TIMEOUT"
	QUERY_PROCESSING_ERROR ErrorCode = "QUERY_PROCESSING_ERROR"
	QUERY_INVALID_SOURCE   ErrorCode = "QUERY_INVALID_SOURCE"
)

// CodedError is a structured error carrying a code, a human-readable message,
// an optional cause, and a retryability hint.
type CodedError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" if a cause is set.
func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *CodedError) Unwrap() error {
	return e.Cause
}

// Is matches CodedErrors by code, so sentinel comparison works across
// independently constructed instances.
func (e *CodedError) Is(target error) bool {
	var coded *CodedError
	if errors.As(target, &coded) {
		return e.Code == coded.Code
	}
	return false
}

// NewError creates a non-retryable CodedError.
func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// NewRetryableError creates a retryable CodedError. Use for transient
// failures such as network timeouts or rate limits.
func NewRetryableError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message, Retryable: true}
}

// WrapError creates a non-retryable CodedError wrapping an existing error.
func WrapError(code ErrorCode, message string, cause error) *CodedError {
	return &CodedError{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the ErrorCode from err, or empty string when err is not a
// CodedError.
func CodeOf(err error) ErrorCode {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// IsRetryable reports whether err carries a retryable hint.
func IsRetryable(err error) bool {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Retryable
	}
	return false
}
