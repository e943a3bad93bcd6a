package service

import (
	"context"
	"time"
)

// ShipmentEvent is published after a shipment status change has been committed.
type ShipmentEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	ShipmentID string    `json:"shipment_id"`
	Barcode    string    `json:"barcode"`
	ClientID   string    `json:"client_id"`
	BatchID    string    `json:"batch_id,omitempty"`
	DriverID   string    `json:"driver_id,omitempty"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	By         string    `json:"by"`
	Note       string    `json:"note,omitempty"`
	At         time.Time `json:"at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishShipmentEvent publishes a status change for downstream consumers
	PublishShipmentEvent(ctx context.Context, event *ShipmentEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
