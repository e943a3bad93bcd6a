package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type shipmentRepository struct {
	store *Store
	tx    *state
}

// NewShipmentRepository returns a ShipmentRepository over the live state.
func NewShipmentRepository(store *Store) repository.ShipmentRepository {
	return &shipmentRepository{store: store}
}

// NewShipmentWatcher returns a ShipmentWatcher woken by every committed write.
func NewShipmentWatcher(store *Store) repository.ShipmentWatcher {
	return &shipmentRepository{store: store}
}

func (r *shipmentRepository) Create(_ context.Context, shipment *entity.Shipment) error {
	return r.store.write(r.tx, func(s *state) error {
		if shipment.ID == "" {
			shipment.ID = uuid.NewString()
		}
		if _, ok := s.shipments[shipment.ID]; ok {
			return errors.Errorf("shipment %s already exists", shipment.ID)
		}
		s.shipments[shipment.ID] = shipment.Clone()

		return nil
	})
}

func (r *shipmentRepository) FindByID(_ context.Context, id string) (*entity.Shipment, error) {
	var found *entity.Shipment
	err := r.store.read(r.tx, func(s *state) error {
		shipment, ok := s.shipments[id]
		if !ok {
			return repository.ErrShipmentNotFound
		}
		found = shipment.Clone()

		return nil
	})

	return found, err
}

func (r *shipmentRepository) FindByBarcode(_ context.Context, clientID, barcode string) (*entity.Shipment, error) {
	var found *entity.Shipment
	err := r.store.read(r.tx, func(s *state) error {
		for _, shipment := range sortedShipments(s) {
			if shipment.Barcode == barcode && clientID != "" && shipment.ClientID == clientID {
				found = shipment.Clone()

				return nil
			}
		}

		return repository.ErrShipmentNotFound
	})

	return found, err
}

func (r *shipmentRepository) ListByBarcode(_ context.Context, barcode string) ([]*entity.Shipment, error) {
	var out []*entity.Shipment
	err := r.store.read(r.tx, func(s *state) error {
		out = make([]*entity.Shipment, 0)
		for _, shipment := range sortedShipments(s) {
			if shipment.Barcode == barcode {
				out = append(out, shipment.Clone())
			}
		}

		return nil
	})

	return out, err
}

func (r *shipmentRepository) List(_ context.Context, filter entity.ShipmentFilter) ([]*entity.Shipment, error) {
	query := equalityOnly(filter)
	var out []*entity.Shipment
	err := r.store.read(r.tx, func(s *state) error {
		out = make([]*entity.Shipment, 0)
		for _, shipment := range sortedShipments(s) {
			if query.Matches(shipment) {
				out = append(out, shipment.Clone())
			}
		}

		return nil
	})

	return out, err
}

func (r *shipmentRepository) Update(_ context.Context, shipment *entity.Shipment) error {
	return r.store.write(r.tx, func(s *state) error {
		if _, ok := s.shipments[shipment.ID]; !ok {
			return repository.ErrShipmentNotFound
		}
		s.shipments[shipment.ID] = shipment.Clone()

		return nil
	})
}

// Watch re-runs the query after every committed write.
func (r *shipmentRepository) Watch(ctx context.Context, filter entity.ShipmentFilter, fn func([]*entity.Shipment) error) error {
	changes, unsubscribe := r.store.subscribe()
	defer unsubscribe()

	for {
		shipments, err := r.List(ctx, filter)
		if err != nil {
			return err
		}
		if err := fn(shipments); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-changes:
		}
	}
}

// equalityOnly keeps the fields a document store can index on.
func equalityOnly(f entity.ShipmentFilter) entity.ShipmentFilter {
	return entity.ShipmentFilter{
		Status:             f.Status,
		BatchID:            f.BatchID,
		DeliveryCity:       f.DeliveryCity,
		DeliveryDelegation: f.DeliveryDelegation,
		PickupCity:         f.PickupCity,
		PickupDelegation:   f.PickupDelegation,
		ClientID:           f.ClientID,
		AssignedTo:         f.AssignedTo,
	}
}

// sortedShipments orders by createdAt desc, then ID.
func sortedShipments(s *state) []*entity.Shipment {
	out := slices.Collect(maps.Values(s.shipments))
	slices.SortFunc(out, func(a, b *entity.Shipment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return out
}
