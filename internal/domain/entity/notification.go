package entity

import "time"

// NotificationKind classifies in-app notifications.
type NotificationKind string

const (
	NotificationKindBatchAssigned  NotificationKind = "batch_assigned"
	NotificationKindBatchCanceled  NotificationKind = "batch_canceled"
	NotificationKindShipmentUpdate NotificationKind = "shipment_update"
)

// Notification is an in-app message stored in the `notifications` collection.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"` // Recipient account.
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Kind      NotificationKind `json:"kind"`
	RefID     string           `json:"refId,omitempty"` // Batch or shipment the message is about.
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
