package errors

import (
	"net/http"

	"greenroute/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Routing errors
	ErrGraphUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"GRAPH_UNAVAILABLE",
		"Road network for the region is unavailable",
		"",
	)

	ErrGraphLoadFailed = NewBaseError(
		http.StatusBadGateway,
		"GRAPH_LOAD_FAILED",
		"Failed to load the road network for the region",
		"",
	)

	ErrNoPathFound = NewBaseError(
		http.StatusUnprocessableEntity,
		"NO_PATH_FOUND",
		"No route exists between the requested points",
		"",
	)

	ErrInvalidCoordinate = NewBaseError(
		http.StatusBadRequest,
		"INVALID_COORDINATE",
		"Coordinate is out of range",
		"",
	)

	ErrUnknownRegion = NewBaseError(
		http.StatusNotFound,
		"UNKNOWN_REGION",
		"Region is not configured",
		"",
	)

	// ErrFeatureQueryFailed is recorded per sampled point and never returned to clients
	ErrFeatureQueryFailed = NewBaseError(
		http.StatusBadGateway,
		"FEATURE_QUERY_FAILED",
		"Station search query failed",
		"",
	)

	ErrUnexpectedComputation = NewBaseError(
		http.StatusInternalServerError,
		"UNEXPECTED_COMPUTATION_ERROR",
		"Route computation failed",
		"",
	)

	// Request errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Request validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)
)

// CauseError is an AppError of a known kind that keeps the underlying cause
// for logging. Clients only ever see the kind's message.
type CauseError struct {
	kind *BaseError
	err  error
}

// NewCauseError wraps err into the given error kind
func NewCauseError(kind *BaseError, err error) AppError {
	return &CauseError{
		kind: kind,
		err:  err,
	}
}

// Error implements the error interface
func (e *CauseError) Error() string {
	if e.err == nil {
		return e.kind.Error()
	}

	return errors.Wrap(e.err, e.kind.errorCode).Error()
}

// Unwrap exposes both the kind and the cause to errors.Is
func (e *CauseError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}

	return []error{e.kind, e.err}
}

// HTTPCode returns the HTTP status code
func (e *CauseError) HTTPCode() int {
	return e.kind.HTTPCode()
}

// ErrorCode returns the business error code
func (e *CauseError) ErrorCode() string {
	return e.kind.ErrorCode()
}

// Message returns the user-friendly error message
func (e *CauseError) Message() string {
	return e.kind.Message()
}

// Details returns detailed error information
func (e *CauseError) Details() string {
	return e.kind.Details()
}

// Cause returns the wrapped error
func (e *CauseError) Cause() error {
	return e.err
}
