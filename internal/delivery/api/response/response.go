// Package response renders the JSON envelopes of the HTTP API.
package response

import (
	"net/http"

	deliverycontext "greenroute/internal/delivery/context"
	domainerrors "greenroute/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// Error codes for failures that do not originate in the domain
const (
	CodeHTTPError     = "HTTP_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// SuccessResponse is the envelope of auxiliary endpoints such as /health and /route/regions
type SuccessResponse struct {
	Data any       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

// ErrorResponse is the envelope of every failed request
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
	Meta  *MetaInfo  `json:"meta"`
}

// ErrorInfo describes a failure
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"` // 4xx only
}

// MetaInfo carries the request id so clients can quote it in bug reports
type MetaInfo struct {
	RequestID string `json:"request_id"`
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{RequestID: deliverycontext.GetRequestID(c)}
}

// Success wraps data into the success envelope
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{Data: data, Meta: meta(c)})
}

// Raw writes data without the envelope. Route payloads keep their documented shape.
func Raw(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, data)
}

// Error writes the error envelope. Details never leave the service on 5xx.
func Error(c echo.Context, statusCode int, errorCode string, message string, details any) error {
	if statusCode >= http.StatusInternalServerError {
		details = nil
	}
	if s, ok := details.(string); ok && s == "" {
		details = nil
	}

	return c.JSON(statusCode, ErrorResponse{
		Error: &ErrorInfo{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
		Meta: meta(c),
	})
}

// AppError writes the envelope for a domain error
func AppError(c echo.Context, appErr domainerrors.AppError) error {
	return Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
}

// InternalServerError writes a 500 without details
func InternalServerError(c echo.Context, message string) error {
	return Error(c, http.StatusInternalServerError, CodeInternalError, message, nil)
}
