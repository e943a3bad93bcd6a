package memory

import (
	"cmp"
	"context"
	"slices"

	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type batchRepository struct {
	store *Store
	tx    *state
}

// NewBatchRepository returns a BatchRepository over the live state.
func NewBatchRepository(store *Store) repository.BatchRepository {
	return &batchRepository{store: store}
}

func (r *batchRepository) Create(_ context.Context, batch *entity.Batch) error {
	return r.store.write(r.tx, func(s *state) error {
		if batch.ID == "" {
			batch.ID = uuid.NewString()
		}
		if _, ok := s.batches[batch.ID]; ok {
			return errors.Errorf("batch %s already exists", batch.ID)
		}
		s.batches[batch.ID] = batch.Clone()

		return nil
	})
}

func (r *batchRepository) FindByID(_ context.Context, id string) (*entity.Batch, error) {
	var found *entity.Batch
	err := r.store.read(r.tx, func(s *state) error {
		batch, ok := s.batches[id]
		if !ok {
			return repository.ErrBatchNotFound
		}
		found = batch.Clone()

		return nil
	})

	return found, err
}

func (r *batchRepository) List(_ context.Context, filter entity.BatchFilter) ([]*entity.Batch, error) {
	var out []*entity.Batch
	err := r.store.read(r.tx, func(s *state) error {
		out = make([]*entity.Batch, 0)
		for _, batch := range s.batches {
			if filter.Matches(batch) {
				out = append(out, batch.Clone())
			}
		}

		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Batch) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return out, err
}

func (r *batchRepository) Update(_ context.Context, batch *entity.Batch) error {
	return r.store.write(r.tx, func(s *state) error {
		if _, ok := s.batches[batch.ID]; !ok {
			return repository.ErrBatchNotFound
		}
		s.batches[batch.ID] = batch.Clone()

		return nil
	})
}

