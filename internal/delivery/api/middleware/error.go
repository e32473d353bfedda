package middleware

import (
	"log/slog"
	"net/http"

	"greenroute/internal/delivery/api/response"
	deliverycontext "greenroute/internal/delivery/context"
	domainerrors "greenroute/internal/domain/errors"
	"greenroute/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		attrs := []any{
			slog.String("error_code", appErr.ErrorCode()),
			slog.Int("status", appErr.HTTPCode()),
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		}

		if appErr.HTTPCode() >= http.StatusInternalServerError {
			logger.Error("Request failed", attrs...)
		} else {
			logger.Warn("Request rejected", attrs...)
		}

		_ = response.AppError(c, appErr)

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}

		_ = response.Error(c, httpErr.Code, response.CodeHTTPError, message, nil)

		return
	}

	logger.Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	_ = response.InternalServerError(c, "Internal server error, please try again later")
}
