package repository

import (
	"context"
	"errors"

	"megafast/internal/domain/entity"
)

// ErrNotificationNotFound is returned when a notification is not found.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines the operations over the `notifications` collection.
type NotificationRepository interface {
	// Create persists a new notification and assigns its ID.
	Create(ctx context.Context, notification *entity.Notification) error

	// FindByID retrieves a notification by its ID.
	FindByID(ctx context.Context, id string) (*entity.Notification, error)

	// ListByUser retrieves a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error)

	// Update overwrites an existing notification.
	Update(ctx context.Context, notification *entity.Notification) error
}
