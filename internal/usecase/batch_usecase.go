package usecase

import (
	"context"

	"megafast/internal/domain/entity"
)

// CreateBatchInput describes a new delivery run.
type CreateBatchInput struct {
	Code        string   `json:"code" validate:"required"`
	DriverID    string   `json:"driverId" validate:"required"`
	ShipmentIDs []string `json:"shipmentIds" validate:"required,min=1,dive,required"`
}

// BatchUsecase is the admin side of the batch lifecycle.
type BatchUsecase interface {
	// CreateBatch groups shipments into a planned batch assigned to a driver, then notifies the driver.
	CreateBatch(ctx context.Context, caller entity.CallerIdentity, input CreateBatchInput) (*entity.BatchSummary, error)

	// CancelBatch cancels an open batch and releases its unfinished shipments.
	CancelBatch(ctx context.Context, caller entity.CallerIdentity, batchID string) (*entity.BatchSummary, error)

	// GetBatch returns one batch with its projections.
	GetBatch(ctx context.Context, caller entity.CallerIdentity, batchID string) (*entity.BatchSummary, error)

	// ListBatches lists batches with their projections.
	ListBatches(ctx context.Context, caller entity.CallerIdentity, filter entity.BatchFilter) ([]entity.BatchSummary, error)
}
