package context

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"megafast/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newEchoContext() echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestRequestScope(t *testing.T) {
	ctx := context.Background()
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Empty(t, RequestID(ctx))
	assert.Same(t, fallback, Logger(ctx, fallback))

	scoped := fallback.With(slog.String("request_id", "req-1"))
	ctx = WithRequestScope(ctx, "req-1", scoped)

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Same(t, scoped, Logger(ctx, fallback))
}

func TestSetCaller(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c := newEchoContext()
	assert.Equal(t, entity.CallerIdentity{}, GetCaller(c))
	c.SetRequest(c.Request().WithContext(WithRequestScope(c.Request().Context(), "req-2", logger)))

	caller := entity.CallerIdentity{UserID: "u1", Role: entity.RoleDriver, DriverID: "d1"}
	SetCaller(c, caller)
	assert.Equal(t, caller, GetCaller(c))

	ctx := c.Request().Context()
	assert.Equal(t, "req-2", RequestID(ctx))
	Logger(ctx, nil).Info("hello")
	assert.Contains(t, buf.String(), "user_id=u1")
	assert.Contains(t, buf.String(), "role=driver")
}

func TestSetCallerWithoutScopedLogger(t *testing.T) {
	c := newEchoContext()
	SetCaller(c, entity.CallerIdentity{UserID: "u1", Role: entity.RoleAdmin})

	assert.Equal(t, "u1", GetCaller(c).UserID)
	assert.Nil(t, Logger(c.Request().Context(), nil))
}
