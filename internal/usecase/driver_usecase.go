// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"megafast/internal/domain/entity"
)

// DriverUsecase is the driver portal: filtered views over the caller's
// shipments and batches, dashboard statistics and the batch delivery workflow.
// Reads return an empty result when the caller has no driver identity; writes fail.
type DriverUsecase interface {
	// GetFilteredShipments lists the driver's shipments matching filters, newest first.
	GetFilteredShipments(ctx context.Context, caller entity.CallerIdentity, filters entity.ShipmentFilter) ([]*entity.Shipment, error)

	// GetShipments lists every shipment assigned to the driver.
	GetShipments(ctx context.Context, caller entity.CallerIdentity) ([]*entity.Shipment, error)

	// GetBatches lists the driver's batches with their projections. An empty status means all.
	GetBatches(ctx context.Context, caller entity.CallerIdentity, status entity.BatchStatus) ([]entity.BatchSummary, error)

	// GetBatchShipments lists the driver's shipments belonging to one of their batches.
	GetBatchShipments(ctx context.Context, caller entity.CallerIdentity, batchID string) ([]*entity.Shipment, error)

	// GetBatchStatistics counts the driver's batches per status.
	GetBatchStatistics(ctx context.Context, caller entity.CallerIdentity) (*entity.BatchStatistics, error)

	// GetDriverStats computes the driver dashboard.
	GetDriverStats(ctx context.Context, caller entity.CallerIdentity) (*entity.DriverStats, error)

	// StartBatchDelivery moves a planned batch to in_progress and its pending shipments to in_transit, atomically.
	StartBatchDelivery(ctx context.Context, caller entity.CallerIdentity, batchID string) (*entity.BatchSummary, error)

	// CompleteBatchDelivery closes a batch once every member shipment is delivered or returned.
	CompleteBatchDelivery(ctx context.Context, caller entity.CallerIdentity, batchID string) (*entity.BatchSummary, error)

	// UpdateShipmentStatus moves one of the driver's shipments to a new status.
	UpdateShipmentStatus(ctx context.Context, caller entity.CallerIdentity, shipmentID string, status entity.ShipmentStatus, notes string) (*entity.Shipment, error)

	// GetAvailableCities lists the distinct pickup and delivery places among the driver's shipments.
	GetAvailableCities(ctx context.Context, caller entity.CallerIdentity) ([]entity.CityOption, error)

	// WatchShipments calls fn with the filtered view and again on every change until ctx is done.
	WatchShipments(ctx context.Context, caller entity.CallerIdentity, filters entity.ShipmentFilter, fn func([]*entity.Shipment) error) error
}
