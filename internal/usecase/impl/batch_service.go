package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
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

// batchService implements the BatchUsecase interface.
type batchService struct {
	txManager     repository.TransactionManager
	shipmentRepo  repository.ShipmentRepository
	batchRepo     repository.BatchRepository
	userRepo      repository.UserRepository
	notifications usecase.NotificationUsecase
	publisher     service.EventPublisher
	logger        *slog.Logger
	now           func() time.Time
}

// NewBatchService is the constructor for batchService.
func NewBatchService(
	txManager repository.TransactionManager,
	shipmentRepo repository.ShipmentRepository,
	batchRepo repository.BatchRepository,
	userRepo repository.UserRepository,
	notifications usecase.NotificationUsecase,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.BatchUsecase {
	return &batchService{
		txManager:     txManager,
		shipmentRepo:  shipmentRepo,
		batchRepo:     batchRepo,
		userRepo:      userRepo,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
	}
}

func (srv *batchService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// CreateBatch assigns the shipments to the driver inside one transaction and
// notifies the driver once it has committed.
func (srv *batchService) CreateBatch(ctx context.Context, caller entity.CallerIdentity, input usecase.CreateBatchInput) (*entity.BatchSummary, error) {
	if !caller.IsAdmin() {
		return nil, domainerrors.ErrForbidden.WithDetails("only admins create batches")
	}
	code := strings.TrimSpace(input.Code)
	ids := uniqueIDs(input.ShipmentIDs)
	if code == "" || input.DriverID == "" || len(ids) == 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("code, driverId and at least one shipment are required")
	}

	driver, err := srv.userRepo.FindByDriverID(ctx, input.DriverID)
	if err != nil {
		return nil, storeError(err, "driver "+input.DriverID)
	}

	var (
		summary entity.BatchSummary
		changes []statusChange
	)

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		shipmentRepo := repoFactory.NewShipmentRepository()
		batchRepo := repoFactory.NewBatchRepository()
		changes = nil

		// 1. Read and check every shipment
		members := make([]*entity.Shipment, 0, len(ids))
		for _, id := range ids {
			s, err := shipmentRepo.FindByID(ctx, id)
			if err != nil {
				return storeError(err, "shipment "+id)
			}
			if s.BatchID != "" {
				return domainerrors.ErrShipmentAlreadyBatched.WithDetails(fmt.Sprintf("shipment %s is in batch %s", s.ID, s.BatchID))
			}
			if s.Status != entity.ShipmentStatusCreated && s.Status != entity.ShipmentStatusAssigned {
				return domainerrors.ErrInvalidStatusTransition.WithDetails(fmt.Sprintf("shipment %s is %s", s.ID, s.Status))
			}
			members = append(members, s)
		}

		// 2. Create the batch, then attach the shipments to it
		now := srv.now()
		batch := &entity.Batch{
			Code:        code,
			AssignedTo:  input.DriverID,
			Status:      entity.BatchStatusPlanned,
			ShipmentIDs: ids,
			CreatedAt:   now,
			CreatedBy:   caller.UserID,
			LastUpdated: now,
		}
		if err := batchRepo.Create(ctx, batch); err != nil {
			return storeError(err, "failed to create batch")
		}

		by := caller.Actor()
		for _, s := range members {
			previous := s.AssignedTo
			s.BatchID = batch.ID
			s.AssignedTo = input.DriverID
			switch {
			case s.Status == entity.ShipmentStatusCreated:
				change, err := transition(s, entity.ShipmentStatusAssigned, by, fmt.Sprintf(constants.NoteAssignedToBatch, code), now)
				if err != nil {
					return err
				}
				changes = append(changes, change)
			case previous != "" && previous != input.DriverID:
				s.Annotate(by, fmt.Sprintf(constants.NoteReassigned, previous, code), now)
			default:
				s.Annotate(by, fmt.Sprintf(constants.NoteAssignedToBatch, code), now)
			}
			if err := shipmentRepo.Update(ctx, s); err != nil {
				return storeError(err, "failed to update shipment "+s.ID)
			}
		}

		summary = summarizeBatch(batch, members)

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to create batch", slog.Any("error", err), slog.String("code", code))

		return nil, errors.Wrap(err, "failed to create batch")
	}
	srv.log(ctx).Info("Batch created", slog.String("batch_id", summary.ID), slog.String("driver_id", input.DriverID), slog.Int("shipments", summary.TotalShipments))

	publishStatusChanges(ctx, srv.publisher, srv.log(ctx), changes)
	srv.notifyDriver(ctx, driver, "Nouveau lot assigné",
		fmt.Sprintf("Le lot %s contient %d expédition(s)", code, summary.TotalShipments),
		entity.NotificationKindBatchAssigned, summary.ID)

	return &summary, nil
}

// CancelBatch cancels an open batch. Members that have not left yet go back
// to created and leave the batch; the others are left as they are.
func (srv *batchService) CancelBatch(ctx context.Context, caller entity.CallerIdentity, batchID string) (*entity.BatchSummary, error) {
	if !caller.IsAdmin() {
		return nil, domainerrors.ErrForbidden.WithDetails("only admins cancel batches")
	}

	var (
		summary entity.BatchSummary
		changes []statusChange
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		shipmentRepo := repoFactory.NewShipmentRepository()
		batchRepo := repoFactory.NewBatchRepository()
		changes = nil

		batch, err := batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return storeError(err, "batch "+batchID)
		}
		if !batch.Status.IsOpen() {
			return domainerrors.ErrBatchStateConflict.WithDetails(fmt.Sprintf("batch %s is already %s", batch.ID, batch.Status))
		}

		members, err := shipmentRepo.List(ctx, entity.ShipmentFilter{BatchID: batchID})
		if err != nil {
			return storeError(err, "failed to list batch shipments")
		}

		now := srv.now()
		by := caller.Actor()
		kept := make([]*entity.Shipment, 0, len(members))
		released := make([]*entity.Shipment, 0, len(members))
		for _, s := range members {
			switch s.Status {
			case entity.ShipmentStatusAssigned:
				change, err := transition(s, entity.ShipmentStatusCreated, by, constants.NoteBatchCanceled, now)
				if err != nil {
					return err
				}
				changes = append(changes, change)
			case entity.ShipmentStatusCreated:
				s.LastUpdated = now
				s.LastUpdatedBy = by
			default:
				kept = append(kept, s)

				continue
			}
			s.BatchID = ""
			s.AssignedTo = ""
			released = append(released, s)
		}

		for _, s := range released {
			if err := shipmentRepo.Update(ctx, s); err != nil {
				return storeError(err, "failed to update shipment "+s.ID)
			}
		}
		batch.MoveTo(entity.BatchStatusCanceled, now)
		if err := batchRepo.Update(ctx, batch); err != nil {
			return storeError(err, "failed to update batch")
		}

		summary = summarizeBatch(batch, kept)

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to cancel batch", slog.Any("error", err), slog.String("batch_id", batchID))

		return nil, errors.Wrap(err, "failed to cancel batch")
	}
	srv.log(ctx).Info("Batch canceled", slog.String("batch_id", batchID), slog.Int("status_changes", len(changes)))

	publishStatusChanges(ctx, srv.publisher, srv.log(ctx), changes)
	if driver, err := srv.userRepo.FindByDriverID(ctx, summary.AssignedTo); err == nil {
		srv.notifyDriver(ctx, driver, "Lot annulé",
			fmt.Sprintf("Le lot %s a été annulé", summary.Code),
			entity.NotificationKindBatchCanceled, summary.ID)
	}

	return &summary, nil
}

// GetBatch returns a batch visible to the caller: admins see all, drivers their own.
func (srv *batchService) GetBatch(ctx context.Context, caller entity.CallerIdentity, batchID string) (*entity.BatchSummary, error) {
	batch, err := srv.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, storeError(err, "batch "+batchID)
	}
	if !caller.IsAdmin() && (!caller.HasDriver() || batch.AssignedTo != caller.DriverID) {
		return nil, domainerrors.ErrBatchForbidden.WithDetails("batch " + batchID)
	}

	members, err := srv.shipmentRepo.List(ctx, entity.ShipmentFilter{BatchID: batchID, AssignedTo: batch.AssignedTo})
	if err != nil {
		return nil, storeError(err, "failed to list batch shipments")
	}
	summary := summarizeBatch(batch, members)

	return &summary, nil
}

// ListBatches lists batches with projections. Drivers only see their own.
func (srv *batchService) ListBatches(ctx context.Context, caller entity.CallerIdentity, filter entity.BatchFilter) ([]entity.BatchSummary, error) {
	switch {
	case caller.IsAdmin():
	case caller.HasDriver():
		filter.AssignedTo = caller.DriverID
	default:
		return []entity.BatchSummary{}, nil
	}

	batches, err := srv.batchRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "failed to list batches")
	}

	summaries := make([]entity.BatchSummary, 0, len(batches))
	for _, b := range batches {
		members, err := srv.shipmentRepo.List(ctx, entity.ShipmentFilter{BatchID: b.ID, AssignedTo: b.AssignedTo})
		if err != nil {
			return nil, storeError(err, "failed to list batch shipments")
		}
		summaries = append(summaries, summarizeBatch(b, members))
	}

	return summaries, nil
}

// notifyDriver sends an in-app and push notification, logging failures.
func (srv *batchService) notifyDriver(ctx context.Context, driver *entity.UserProfile, title, body string, kind entity.NotificationKind, refID string) {
	if srv.notifications == nil || driver == nil {
		return
	}
	if _, err := srv.notifications.Notify(ctx, driver.ID, title, body, kind, refID); err != nil {
		srv.log(ctx).Warn("Failed to notify driver", slog.Any("error", err), slog.String("user_id", driver.ID), slog.String("ref_id", refID))
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
