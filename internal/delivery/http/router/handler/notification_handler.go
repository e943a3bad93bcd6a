package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/delivery/http/response"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// NotificationHandler holds dependencies for notification-related handlers
type NotificationHandler struct {
	uc     usecase.NotificationUsecase
	logger *slog.Logger
}

// NewNotificationHandler is the constructor for NotificationHandler
func NewNotificationHandler(uc usecase.NotificationUsecase, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		uc:     uc,
		logger: logger,
	}
}

// RegisterDeviceRequest is the body of POST /devices.
type RegisterDeviceRequest struct {
	FCMToken string `json:"fcmToken" validate:"required"`
}

// ListNotifications lists the caller's notifications. ?unread=true keeps unread ones.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	unreadOnly := false
	if raw := c.QueryParam("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return domainerrors.ErrValidationFailed.WithDetails("unread must be a boolean")
		}
		unreadOnly = v
	}

	notifications, err := h.uc.ListNotifications(c.Request().Context(), deliverycontext.GetCaller(c), unreadOnly)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, notifications, "")
}

// MarkRead marks a notification as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.uc.MarkRead(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Notification marked as read")
}

// RegisterDevice records a push token for the caller.
func (h *NotificationHandler) RegisterDevice(c echo.Context) error {
	var req RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid device input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.uc.RegisterDevice(c.Request().Context(), deliverycontext.GetCaller(c), req.FCMToken); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, nil, "Device registered")
}
