package repository

import (
	"context"
	"errors"

	"megafast/internal/domain/entity"
)

// ErrShipmentNotFound is returned when a shipment document does not exist.
var ErrShipmentNotFound = errors.New("shipment not found")

// ShipmentRepository defines the operations over the `shipments` collection.
type ShipmentRepository interface {
	// Create persists a new shipment and assigns its ID.
	Create(ctx context.Context, shipment *entity.Shipment) error

	// FindByID retrieves a shipment by document ID.
	FindByID(ctx context.Context, id string) (*entity.Shipment, error)

	// FindByBarcode retrieves the shipment with this barcode inside a client's namespace.
	FindByBarcode(ctx context.Context, clientID, barcode string) (*entity.Shipment, error)

	// ListByBarcode returns every shipment carrying this barcode across clients, newest first.
	ListByBarcode(ctx context.Context, barcode string) ([]*entity.Shipment, error)

	// List returns the shipments matching the equality fields of filter
	// (status, batchId, clientId, assignedTo, cities, delegations), newest first.
	// Substring and range fields are ignored; callers apply them with filter.Apply.
	List(ctx context.Context, filter entity.ShipmentFilter) ([]*entity.Shipment, error)

	// Update overwrites an existing shipment.
	Update(ctx context.Context, shipment *entity.Shipment) error
}

// ShipmentWatcher streams live results of a shipment query.
type ShipmentWatcher interface {
	// Watch calls fn with the current result of List(filter) and again after
	// every change affecting it. It blocks until ctx is done or fn returns an error.
	Watch(ctx context.Context, filter entity.ShipmentFilter, fn func([]*entity.Shipment) error) error
}
