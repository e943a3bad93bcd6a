package firestoredb

import (
	"context"

	"megafast/internal/domain/constants"
	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

// batchRepository implements the repository.BatchRepository interface.
type batchRepository struct {
	client *firestore.Client
	exec   executor
}

// NewBatchRepository is the constructor for batchRepository.
func NewBatchRepository(client *firestore.Client) repository.BatchRepository {
	return &batchRepository{client: client, exec: executor{client: client}}
}

func (repo *batchRepository) collection() *firestore.CollectionRef {
	return repo.client.Collection(constants.CollectionBatches)
}

func (repo *batchRepository) Create(ctx context.Context, batch *entity.Batch) error {
	ref := repo.collection().NewDoc()
	if batch.ID != "" {
		ref = repo.collection().Doc(batch.ID)
	}
	if err := repo.exec.create(ctx, ref, fromBatchDomain(batch)); err != nil {
		return errors.Wrap(err, "failed to create batch")
	}
	batch.ID = ref.ID

	return nil
}

func (repo *batchRepository) FindByID(ctx context.Context, id string) (*entity.Batch, error) {
	snap, err := repo.exec.get(ctx, repo.collection().Doc(id))
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrBatchNotFound
		}

		return nil, errors.Wrap(err, "failed to find batch by ID")
	}

	return toBatchDomain(snap)
}

func (repo *batchRepository) List(ctx context.Context, filter entity.BatchFilter) ([]*entity.Batch, error) {
	q := repo.collection().Query
	if filter.AssignedTo != "" {
		q = q.Where("assignedTo", "==", filter.AssignedTo)
	}
	if filter.Status != "" {
		q = q.Where("status", "in", filter.Status.StoredValues())
	}

	docs, err := repo.exec.query(ctx, q.OrderBy("createdAt", firestore.Desc))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list batches")
	}

	batches := make([]*entity.Batch, 0, len(docs))
	for _, doc := range docs {
		b, err := toBatchDomain(doc)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}

	return batches, nil
}

func (repo *batchRepository) Update(ctx context.Context, batch *entity.Batch) error {
	err := repo.exec.set(ctx, repo.collection().Doc(batch.ID), fromBatchDomain(batch))
	if err != nil {
		if isNotFound(err) {
			return repository.ErrBatchNotFound
		}

		return errors.Wrap(err, "failed to update batch")
	}

	return nil
}
