package repository

import (
	"context"
	"errors"

	"megafast/internal/domain/entity"
)

// ErrBatchNotFound is returned when a batch document does not exist.
var ErrBatchNotFound = errors.New("batch not found")

// BatchRepository defines the operations over the `batches` collection.
type BatchRepository interface {
	// Create persists a new batch and assigns its ID.
	Create(ctx context.Context, batch *entity.Batch) error

	// FindByID retrieves a batch by document ID.
	FindByID(ctx context.Context, id string) (*entity.Batch, error)

	// List returns the batches matching filter, newest first.
	List(ctx context.Context, filter entity.BatchFilter) ([]*entity.Batch, error)

	// Update overwrites an existing batch.
	Update(ctx context.Context, batch *entity.Batch) error
}
