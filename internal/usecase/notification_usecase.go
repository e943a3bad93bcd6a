package usecase

import (
	"context"

	"megafast/internal/domain/entity"
	"megafast/internal/domain/service"
)

// NotificationUsecase defines the in-app and push notification use cases.
type NotificationUsecase interface {
	// Notify stores a notification for the user and pushes it to their devices.
	// Push failures are logged and do not fail the call.
	Notify(ctx context.Context, userID, title, body string, kind entity.NotificationKind, refID string) (*entity.Notification, error)

	// NotifyShipmentEvent notifies every account of the shipment's client
	// about a committed status change. It returns how many accounts were notified.
	NotifyShipmentEvent(ctx context.Context, event *service.ShipmentEvent) (int, error)

	// ListNotifications lists the caller's notifications, newest first.
	ListNotifications(ctx context.Context, caller entity.CallerIdentity, unreadOnly bool) ([]*entity.Notification, error)

	// MarkRead marks one of the caller's notifications as read.
	MarkRead(ctx context.Context, caller entity.CallerIdentity, notificationID string) error

	// RegisterDevice records an FCM token for the caller.
	RegisterDevice(ctx context.Context, caller entity.CallerIdentity, fcmToken string) error
}
