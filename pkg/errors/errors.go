package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Resolution errors
	ErrUnknownDependency ErrorCode = "UNKNOWN_DEPENDENCY"
	ErrResolutionAborted ErrorCode = "RESOLUTION_ABORTED"

	// Acquisition errors
	ErrDownloadsDisabled ErrorCode = "DOWNLOADS_DISABLED"
	ErrTermsDenied       ErrorCode = "TERMS_DENIED"
	ErrChecksumAborted   ErrorCode = "CHECKSUM_ABORTED"
	ErrChecksumUnknown   ErrorCode = "CHECKSUM_UNKNOWN_ALGORITHM"
	ErrFetchFailed       ErrorCode = "FETCH_FAILED"
	ErrPostFetchFailed   ErrorCode = "POST_FETCH_FAILED"

	// Interaction errors
	ErrNonInteractive ErrorCode = "NON_INTERACTIVE"

	// Configuration errors
	ErrConfigLoad     ErrorCode = "CONFIG_LOAD"
	ErrConfigParse    ErrorCode = "CONFIG_PARSE"
	ErrManifestValid  ErrorCode = "MANIFEST_INVALID"
	ErrDependencyDecl ErrorCode = "DEPENDENCY_INVALID"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
	ErrDirRemove    ErrorCode = "DIR_REMOVE"
)

// DataDepsError represents a structured error with code and details
type DataDepsError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DataDepsError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DataDepsError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DataDepsError) Is(target error) bool {
	var targetErr *DataDepsError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DataDepsError with the given code and message
func New(code ErrorCode, message string) *DataDepsError {
	return &DataDepsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DataDepsError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DataDepsError {
	return &DataDepsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DataDepsError
func Wrap(err error, code ErrorCode, message string) *DataDepsError {
	if err == nil {
		return nil
	}
	return &DataDepsError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DataDepsError {
	if err == nil {
		return nil
	}
	return &DataDepsError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DataDepsError) WithDetail(key string, value interface{}) *DataDepsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *DataDepsError) WithDetails(details map[string]interface{}) *DataDepsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var ddErr *DataDepsError
	if errors.As(err, &ddErr) {
		return ddErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DataDepsError
func GetErrorCode(err error) ErrorCode {
	var ddErr *DataDepsError
	if errors.As(err, &ddErr) {
		return ddErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DataDepsError
func GetErrorDetails(err error) map[string]interface{} {
	var ddErr *DataDepsError
	if errors.As(err, &ddErr) {
		return ddErr.Details
	}
	return nil
}
