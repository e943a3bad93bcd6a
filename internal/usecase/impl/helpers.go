// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/domain/repository"
	"megafast/internal/domain/service"

	"github.com/pkg/errors"
)

// statusChange records a shipment transition made inside a transaction so
// that events can be published once the transaction has committed.
type statusChange struct {
	shipment *entity.Shipment
	from     entity.ShipmentStatus
}

// storeError maps repository sentinels to domain errors and wraps anything
// else as a database failure.
func storeError(err error, details string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrShipmentNotFound):
		return domainerrors.ErrShipmentNotFound.WithDetails(details)
	case errors.Is(err, repository.ErrBatchNotFound):
		return domainerrors.ErrBatchNotFound.WithDetails(details)
	case errors.Is(err, repository.ErrUserNotFound):
		return domainerrors.ErrUserNotFound.WithDetails(details)
	case errors.Is(err, repository.ErrNotificationNotFound):
		return domainerrors.ErrNotificationNotFound.WithDetails(details)
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

// transition applies the workflow table and reports an AppError on refusal.
func transition(s *entity.Shipment, next entity.ShipmentStatus, by, note string, at time.Time) (statusChange, error) {
	from := s.Status
	if err := s.Transition(next, by, note, at); err != nil {
		return statusChange{}, domainerrors.ErrInvalidStatusTransition.WithDetails(err.Error())
	}

	return statusChange{shipment: s, from: from}, nil
}

// publishStatusChanges emits one event per committed transition. Failures
// are logged and never reported to the caller.
func publishStatusChanges(ctx context.Context, publisher service.EventPublisher, logger *slog.Logger, changes []statusChange) {
	if publisher == nil {
		return
	}
	requestID := deliverycontext.RequestID(ctx)

	for _, change := range changes {
		s := change.shipment
		last, _ := s.LastHistory()
		event := &service.ShipmentEvent{
			RequestID:  requestID,
			ShipmentID: s.ID,
			Barcode:    s.Barcode,
			ClientID:   s.ClientID,
			BatchID:    s.BatchID,
			DriverID:   s.AssignedTo,
			From:       change.from.String(),
			To:         s.Status.String(),
			By:         last.By,
			Note:       last.Note,
			At:         last.At,
		}
		if err := publisher.PublishShipmentEvent(ctx, event); err != nil {
			logger.Warn("Failed to publish shipment event",
				slog.String("shipment_id", s.ID),
				slog.String("to", event.To),
				slog.Any("error", err),
			)
		}
	}
}
