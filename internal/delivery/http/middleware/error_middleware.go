package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/delivery/http/response"
	domainerrors "megafast/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
	debug  bool
}

// NewErrorMiddleware creates a new error handling middleware.
// In debug mode unexpected errors are returned to the client in details.
func NewErrorMiddleware(logger *slog.Logger, debug bool) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
		debug:  debug,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.log(c).Error("Request failed", slog.Any("error", err), slog.String("code", appErr.ErrorCode()))
		}
		m.write(c, response.AppError(c, appErr))

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		details := fmt.Sprint(httpErr.Message)
		m.write(c, response.Error(c, httpErr.Code, "HTTP_ERROR", message, details))

		return
	}

	m.log(c).Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	details := ""
	if m.debug {
		details = err.Error()
	}
	m.write(c, response.AppError(c, domainerrors.ErrInternalError.WithDetails(details)))
}

func (m *ErrorMiddleware) log(c echo.Context) *slog.Logger {
	return deliverycontext.Logger(c.Request().Context(), m.logger)
}

func (m *ErrorMiddleware) write(c echo.Context, err error) {
	if err != nil {
		m.log(c).Warn("Failed to write error response", slog.Any("error", err))
	}
}
