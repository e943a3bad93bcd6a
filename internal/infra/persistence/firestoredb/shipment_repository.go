package firestoredb

import (
	"context"

	"megafast/internal/domain/constants"
	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// shipmentRepository implements the repository.ShipmentRepository interface.
type shipmentRepository struct {
	client *firestore.Client
	exec   executor
}

// NewShipmentRepository is the constructor for shipmentRepository.
func NewShipmentRepository(client *firestore.Client) repository.ShipmentRepository {
	return &shipmentRepository{client: client, exec: executor{client: client}}
}

// NewShipmentWatcher returns a ShipmentWatcher backed by query snapshots.
func NewShipmentWatcher(client *firestore.Client) repository.ShipmentWatcher {
	return &shipmentRepository{client: client, exec: executor{client: client}}
}

func (repo *shipmentRepository) collection() *firestore.CollectionRef {
	return repo.client.Collection(constants.CollectionShipments)
}

func (repo *shipmentRepository) Create(ctx context.Context, shipment *entity.Shipment) error {
	ref := repo.collection().NewDoc()
	if shipment.ID != "" {
		ref = repo.collection().Doc(shipment.ID)
	}
	if err := repo.exec.create(ctx, ref, fromShipmentDomain(shipment)); err != nil {
		return errors.Wrap(err, "failed to create shipment")
	}
	shipment.ID = ref.ID

	return nil
}

func (repo *shipmentRepository) FindByID(ctx context.Context, id string) (*entity.Shipment, error) {
	snap, err := repo.exec.get(ctx, repo.collection().Doc(id))
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrShipmentNotFound
		}

		return nil, errors.Wrap(err, "failed to find shipment by ID")
	}

	return toShipmentDomain(snap)
}

func (repo *shipmentRepository) FindByBarcode(ctx context.Context, clientID, barcode string) (*entity.Shipment, error) {
	if clientID == "" {
		return nil, repository.ErrShipmentNotFound
	}
	q := repo.collection().Where("barcode", "==", barcode).Where("clientId", "==", clientID)

	docs, err := repo.exec.query(ctx, q.Limit(1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to find shipment by barcode")
	}
	if len(docs) == 0 {
		return nil, repository.ErrShipmentNotFound
	}

	return toShipmentDomain(docs[0])
}

func (repo *shipmentRepository) ListByBarcode(ctx context.Context, barcode string) ([]*entity.Shipment, error) {
	q := repo.collection().Where("barcode", "==", barcode).OrderBy("createdAt", firestore.Desc)

	docs, err := repo.exec.query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list shipments by barcode")
	}

	return toShipments(docs)
}

func (repo *shipmentRepository) List(ctx context.Context, filter entity.ShipmentFilter) ([]*entity.Shipment, error) {
	docs, err := repo.exec.query(ctx, repo.query(filter))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list shipments")
	}

	return toShipments(docs)
}

func (repo *shipmentRepository) Update(ctx context.Context, shipment *entity.Shipment) error {
	err := repo.exec.set(ctx, repo.collection().Doc(shipment.ID), fromShipmentDomain(shipment))
	if err != nil {
		if isNotFound(err) {
			return repository.ErrShipmentNotFound
		}

		return errors.Wrap(err, "failed to update shipment")
	}

	return nil
}

// Watch follows the query's snapshot stream.
func (repo *shipmentRepository) Watch(ctx context.Context, filter entity.ShipmentFilter, fn func([]*entity.Shipment) error) error {
	it := repo.query(filter).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || isDone(err) || status.Code(err) == codes.Canceled {
				return nil
			}

			return errors.Wrap(err, "shipment snapshot stream failed")
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return errors.Wrap(err, "failed to read shipment snapshot")
		}
		shipments, err := toShipments(docs)
		if err != nil {
			return err
		}
		if err := fn(shipments); err != nil {
			return err
		}
	}
}

// query pushes the equality fields of filter down to Firestore.
func (repo *shipmentRepository) query(filter entity.ShipmentFilter) firestore.Query {
	q := repo.collection().Query
	if filter.Status != "" {
		q = q.Where("status", "in", filter.Status.StoredValues())
	}

	equalities := []struct {
		field string
		value string
	}{
		{"batchId", filter.BatchID},
		{"clientId", filter.ClientID},
		{"assignedTo", filter.AssignedTo},
		{"deliveryCity", filter.DeliveryCity},
		{"deliveryDelegation", filter.DeliveryDelegation},
		{"pickupCity", filter.PickupCity},
		{"pickupDelegation", filter.PickupDelegation},
	}
	for _, eq := range equalities {
		if eq.value != "" {
			q = q.Where(eq.field, "==", eq.value)
		}
	}

	return q.OrderBy("createdAt", firestore.Desc)
}

func toShipments(docs []*firestore.DocumentSnapshot) ([]*entity.Shipment, error) {
	shipments := make([]*entity.Shipment, 0, len(docs))
	for _, doc := range docs {
		s, err := toShipmentDomain(doc)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}

	return shipments, nil
}

func isDone(err error) bool {
	return errors.Is(err, iterator.Done)
}
