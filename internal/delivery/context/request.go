// Package context carries request-scoped values from the delivery layer to the usecases.
package context

import (
	"context"
	"log/slog"

	"megafast/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is the header carrying the request ID in and out.
const HeaderXRequestID = "X-Request-Id"

type scopeKey int

const (
	requestIDKey scopeKey = iota
	loggerKey
)

const callerKey = "caller"

// WithRequestScope returns a context carrying the request ID and the logger tagged with it.
func WithRequestScope(ctx context.Context, requestID string, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	return context.WithValue(ctx, loggerKey, logger)
}

// RequestID returns the request ID, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// Logger returns the request-scoped logger, or fallback outside a request.
func Logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// SetCaller stores the authenticated caller and tags the request logger with it.
func SetCaller(c echo.Context, caller entity.CallerIdentity) {
	c.Set(callerKey, caller)

	ctx := c.Request().Context()
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		logger = logger.With(slog.String("user_id", caller.UserID), slog.String("role", caller.Role.String()))
		c.SetRequest(c.Request().WithContext(context.WithValue(ctx, loggerKey, logger)))
	}
}

// GetCaller returns the caller set by the auth middleware.
// The zero identity is returned on public routes.
func GetCaller(c echo.Context) entity.CallerIdentity {
	if caller, ok := c.Get(callerKey).(entity.CallerIdentity); ok {
		return caller
	}

	return entity.CallerIdentity{}
}
