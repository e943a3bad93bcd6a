package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/domain/constants"
	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/domain/repository"
	"megafast/internal/domain/service"
	"megafast/internal/usecase"

	"github.com/pkg/errors"
)

// driverSettableStatuses are the targets a driver may pick by hand.
// Cancelation and unassignment belong to clients and admins.
var driverSettableStatuses = map[entity.ShipmentStatus]bool{
	entity.ShipmentStatusInTransit: true,
	entity.ShipmentStatusDelivered: true,
	entity.ShipmentStatusReturned:  true,
}

// driverService implements the DriverUsecase interface.
type driverService struct {
	txManager    repository.TransactionManager
	shipmentRepo repository.ShipmentRepository
	batchRepo    repository.BatchRepository
	watcher      repository.ShipmentWatcher
	publisher    service.EventPublisher
	logger       *slog.Logger
	now          func() time.Time
}

// NewDriverService is the constructor for driverService.
func NewDriverService(
	txManager repository.TransactionManager,
	shipmentRepo repository.ShipmentRepository,
	batchRepo repository.BatchRepository,
	watcher repository.ShipmentWatcher,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.DriverUsecase {
	return &driverService{
		txManager:    txManager,
		shipmentRepo: shipmentRepo,
		batchRepo:    batchRepo,
		watcher:      watcher,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *driverService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// GetFilteredShipments pushes the equality filters to the store and applies the rest in memory.
func (srv *driverService) GetFilteredShipments(ctx context.Context, caller entity.CallerIdentity, filters entity.ShipmentFilter) ([]*entity.Shipment, error) {
	if !caller.HasDriver() {
		srv.log(ctx).Debug("No driver identity, returning empty shipment list", slog.String("user_id", caller.UserID))

		return []*entity.Shipment{}, nil
	}
	filters.AssignedTo = caller.DriverID

	shipments, err := srv.shipmentRepo.List(ctx, filters)
	if err != nil {
		srv.log(ctx).Error("Failed to list driver shipments", slog.Any("error", err), slog.String("driver_id", caller.DriverID))

		return nil, storeError(err, "failed to list driver shipments")
	}

	return filters.Apply(shipments), nil
}

// GetShipments lists all of the driver's shipments.
func (srv *driverService) GetShipments(ctx context.Context, caller entity.CallerIdentity) ([]*entity.Shipment, error) {
	return srv.GetFilteredShipments(ctx, caller, entity.ShipmentFilter{})
}

// GetBatches lists the driver's batches with projections computed from their members.
func (srv *driverService) GetBatches(ctx context.Context, caller entity.CallerIdentity, status entity.BatchStatus) ([]entity.BatchSummary, error) {
	if !caller.HasDriver() {
		return []entity.BatchSummary{}, nil
	}

	batches, groups, err := srv.loadDriverBatches(ctx, caller.DriverID, status)
	if err != nil {
		return nil, err
	}

	summaries := make([]entity.BatchSummary, 0, len(batches))
	for _, b := range batches {
		summaries = append(summaries, summarizeBatch(b, groups[b.ID]))
	}

	return summaries, nil
}

// GetBatchShipments lists the shipments of one of the driver's batches.
func (srv *driverService) GetBatchShipments(ctx context.Context, caller entity.CallerIdentity, batchID string) ([]*entity.Shipment, error) {
	if !caller.HasDriver() {
		return []*entity.Shipment{}, nil
	}

	if _, err := loadOwnedBatch(ctx, srv.batchRepo, batchID, caller.DriverID); err != nil {
		return nil, err
	}

	shipments, err := srv.shipmentRepo.List(ctx, entity.ShipmentFilter{BatchID: batchID, AssignedTo: caller.DriverID})
	if err != nil {
		return nil, storeError(err, "failed to list batch shipments")
	}

	return shipments, nil
}

// GetBatchStatistics recomputes the batch counters from the source documents.
func (srv *driverService) GetBatchStatistics(ctx context.Context, caller entity.CallerIdentity) (*entity.BatchStatistics, error) {
	stats := &entity.BatchStatistics{
		ByStatus: make(map[entity.BatchStatus]int, len(entity.AllBatchStatuses())),
		Batches:  []entity.BatchSummary{},
	}
	for _, status := range entity.AllBatchStatuses() {
		stats.ByStatus[status] = 0
	}
	if !caller.HasDriver() {
		return stats, nil
	}

	batches, groups, err := srv.loadDriverBatches(ctx, caller.DriverID, "")
	if err != nil {
		return nil, err
	}

	stats.Total = len(batches)
	for _, b := range batches {
		stats.ByStatus[b.Status]++
		stats.Batches = append(stats.Batches, summarizeBatch(b, groups[b.ID]))
	}

	return stats, nil
}

// GetDriverStats recomputes the driver dashboard from the source documents.
func (srv *driverService) GetDriverStats(ctx context.Context, caller entity.CallerIdentity) (*entity.DriverStats, error) {
	if !caller.HasDriver() {
		return &entity.DriverStats{ShipmentStats: computeShipmentStats(nil)}, nil
	}

	shipments, err := srv.shipmentRepo.List(ctx, entity.ShipmentFilter{AssignedTo: caller.DriverID})
	if err != nil {
		return nil, storeError(err, "failed to list driver shipments")
	}
	batches, err := srv.batchRepo.List(ctx, entity.BatchFilter{AssignedTo: caller.DriverID})
	if err != nil {
		return nil, storeError(err, "failed to list driver batches")
	}

	stats := &entity.DriverStats{
		ShipmentStats: computeShipmentStats(shipments),
		TotalBatches:  len(batches),
	}
	for _, b := range batches {
		switch {
		case b.Status.IsOpen():
			stats.ActiveBatches++
		case b.Status == entity.BatchStatusCompleted:
			stats.CompletedBatches++
		}
	}

	return stats, nil
}

// StartBatchDelivery puts a planned batch on the road. The batch and every
// pending member move together or not at all.
func (srv *driverService) StartBatchDelivery(ctx context.Context, caller entity.CallerIdentity, batchID string) (*entity.BatchSummary, error) {
	if !caller.HasDriver() {
		return nil, domainerrors.ErrIdentityRequired.WithDetails("driver identity is required to start a batch")
	}
	srv.log(ctx).Info("Starting batch delivery", slog.String("batch_id", batchID), slog.String("driver_id", caller.DriverID))

	var (
		summary entity.BatchSummary
		changes []statusChange
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		batchRepo := repoFactory.NewBatchRepository()
		shipmentRepo := repoFactory.NewShipmentRepository()
		changes = nil

		// 1. Read the batch and check ownership and state
		batch, err := loadOwnedBatch(ctx, batchRepo, batchID, caller.DriverID)
		if err != nil {
			return err
		}
		if batch.Status != entity.BatchStatusPlanned {
			return domainerrors.ErrBatchStateConflict.WithDetails(fmt.Sprintf("batch %s is %s, expected %s", batch.ID, batch.Status, entity.BatchStatusPlanned))
		}

		// 2. Read the members as one snapshot
		members, err := shipmentRepo.List(ctx, entity.ShipmentFilter{BatchID: batchID, AssignedTo: caller.DriverID})
		if err != nil {
			return storeError(err, "failed to list batch shipments")
		}

		// 3. Move pending members to in_transit
		now := srv.now()
		by := caller.Actor()
		for _, s := range members {
			from := s.Status
			switch from {
			case entity.ShipmentStatusCreated:
				if _, err := transition(s, entity.ShipmentStatusAssigned, by, fmt.Sprintf(constants.NoteAssignedToBatch, batch.Code), now); err != nil {
					return err
				}
			case entity.ShipmentStatusAssigned:
			default:
				continue
			}

			change, err := transition(s, entity.ShipmentStatusInTransit, by, constants.NoteBatchStarted, now)
			if err != nil {
				return err
			}
			change.from = from
			changes = append(changes, change)
		}

		// 4. Write everything in the same transaction
		for _, change := range changes {
			if err := shipmentRepo.Update(ctx, change.shipment); err != nil {
				return storeError(err, "failed to update shipment "+change.shipment.ID)
			}
		}
		batch.MoveTo(entity.BatchStatusInProgress, now)
		if err := batchRepo.Update(ctx, batch); err != nil {
			return storeError(err, "failed to update batch")
		}

		summary = summarizeBatch(batch, members)

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to start batch delivery", slog.Any("error", err), slog.String("batch_id", batchID))

		return nil, errors.Wrap(err, "failed to start batch delivery")
	}

	publishStatusChanges(ctx, srv.publisher, srv.log(ctx), changes)
	srv.log(ctx).Info("Batch delivery started", slog.String("batch_id", batchID), slog.Int("shipments_moved", len(changes)))

	return &summary, nil
}

// CompleteBatchDelivery closes a batch once all its members are delivered or
// returned. Shipments are only read.
func (srv *driverService) CompleteBatchDelivery(ctx context.Context, caller entity.CallerIdentity, batchID string) (*entity.BatchSummary, error) {
	if !caller.HasDriver() {
		return nil, domainerrors.ErrIdentityRequired.WithDetails("driver identity is required to complete a batch")
	}
	srv.log(ctx).Info("Completing batch delivery", slog.String("batch_id", batchID), slog.String("driver_id", caller.DriverID))

	var summary entity.BatchSummary

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		batchRepo := repoFactory.NewBatchRepository()
		shipmentRepo := repoFactory.NewShipmentRepository()

		batch, err := loadOwnedBatch(ctx, batchRepo, batchID, caller.DriverID)
		if err != nil {
			return err
		}
		if !batch.Status.IsOpen() {
			return domainerrors.ErrBatchStateConflict.WithDetails(fmt.Sprintf("batch %s is already %s", batch.ID, batch.Status))
		}

		members, err := shipmentRepo.List(ctx, entity.ShipmentFilter{BatchID: batchID, AssignedTo: caller.DriverID})
		if err != nil {
			return storeError(err, "failed to list batch shipments")
		}

		open := 0
		for _, s := range members {
			if !s.Status.IsTerminal() {
				open++
			}
		}
		if open > 0 {
			return domainerrors.ErrBatchIncomplete.WithDetails(fmt.Sprintf("%d of %d shipments are not delivered or returned", open, len(members)))
		}

		batch.MoveTo(entity.BatchStatusCompleted, srv.now())
		if err := batchRepo.Update(ctx, batch); err != nil {
			return storeError(err, "failed to update batch")
		}

		summary = summarizeBatch(batch, members)

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Batch delivery not completed", slog.Any("error", err), slog.String("batch_id", batchID))

		return nil, errors.Wrap(err, "failed to complete batch delivery")
	}
	srv.log(ctx).Info("Batch delivery completed", slog.String("batch_id", batchID))

	return &summary, nil
}

// UpdateShipmentStatus applies a driver-chosen transition and records it in the history.
func (srv *driverService) UpdateShipmentStatus(ctx context.Context, caller entity.CallerIdentity, shipmentID string, status entity.ShipmentStatus, notes string) (*entity.Shipment, error) {
	if !caller.HasDriver() {
		return nil, domainerrors.ErrIdentityRequired.WithDetails("driver identity is required to update a shipment")
	}
	if !driverSettableStatuses[status] {
		return nil, domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("status %q cannot be set by a driver", status))
	}

	var (
		updated *entity.Shipment
		change  statusChange
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		shipmentRepo := repoFactory.NewShipmentRepository()

		shipment, err := shipmentRepo.FindByID(ctx, shipmentID)
		if err != nil {
			return storeError(err, "shipment "+shipmentID)
		}
		if shipment.AssignedTo != caller.DriverID {
			return domainerrors.ErrForbidden.WithDetails("shipment is not assigned to this driver")
		}

		change, err = transition(shipment, status, caller.Actor(), notes, srv.now())
		if err != nil {
			return err
		}
		if notes != "" {
			shipment.Notes = notes
		}
		if err := shipmentRepo.Update(ctx, shipment); err != nil {
			return storeError(err, "failed to update shipment")
		}
		updated = shipment

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to update shipment status", slog.Any("error", err), slog.String("shipment_id", shipmentID), slog.String("status", status.String()))

		return nil, errors.Wrap(err, "failed to update shipment status")
	}

	publishStatusChanges(ctx, srv.publisher, srv.log(ctx), []statusChange{change})

	return updated, nil
}

// GetAvailableCities lists the places found in the driver's shipments.
func (srv *driverService) GetAvailableCities(ctx context.Context, caller entity.CallerIdentity) ([]entity.CityOption, error) {
	shipments, err := srv.GetShipments(ctx, caller)
	if err != nil {
		return nil, err
	}

	return extractCities(shipments), nil
}

// WatchShipments streams the filtered view of the driver's shipments.
func (srv *driverService) WatchShipments(ctx context.Context, caller entity.CallerIdentity, filters entity.ShipmentFilter, fn func([]*entity.Shipment) error) error {
	if !caller.HasDriver() {
		return fn([]*entity.Shipment{})
	}
	filters.AssignedTo = caller.DriverID

	return srv.watcher.Watch(ctx, filters, func(shipments []*entity.Shipment) error {
		return fn(filters.Apply(shipments))
	})
}

// loadDriverBatches returns the driver's batches and their member shipments grouped by batch ID.
func (srv *driverService) loadDriverBatches(ctx context.Context, driverID string, status entity.BatchStatus) ([]*entity.Batch, map[string][]*entity.Shipment, error) {
	batches, err := srv.batchRepo.List(ctx, entity.BatchFilter{AssignedTo: driverID, Status: status})
	if err != nil {
		return nil, nil, storeError(err, "failed to list driver batches")
	}
	shipments, err := srv.shipmentRepo.List(ctx, entity.ShipmentFilter{AssignedTo: driverID})
	if err != nil {
		return nil, nil, storeError(err, "failed to list driver shipments")
	}

	return batches, groupByBatch(shipments), nil
}

// loadOwnedBatch reads a batch and checks it is assigned to the driver.
func loadOwnedBatch(ctx context.Context, batchRepo repository.BatchRepository, batchID, driverID string) (*entity.Batch, error) {
	batch, err := batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, storeError(err, "batch "+batchID)
	}
	if batch.AssignedTo != driverID {
		return nil, domainerrors.ErrBatchForbidden.WithDetails(fmt.Sprintf("batch %s belongs to another driver", batchID))
	}

	return batch, nil
}
