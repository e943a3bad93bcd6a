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

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	barcodePrefix       = "MF"
	barcodeSuffixLength = 6
	barcodeMaxAttempts  = 5
)

// shipmentService implements the ShipmentUsecase interface.
type shipmentService struct {
	txManager    repository.TransactionManager
	shipmentRepo repository.ShipmentRepository
	labels       service.LabelGenerator
	publisher    service.EventPublisher
	logger       *slog.Logger
	now          func() time.Time
}

// NewShipmentService is the constructor for shipmentService.
func NewShipmentService(
	txManager repository.TransactionManager,
	shipmentRepo repository.ShipmentRepository,
	labels service.LabelGenerator,
	publisher service.EventPublisher,
	logger *slog.Logger,
) usecase.ShipmentUsecase {
	return &shipmentService{
		txManager:    txManager,
		shipmentRepo: shipmentRepo,
		labels:       labels,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

func (srv *shipmentService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// generateBarcode returns MF + yymmdd + 6 uppercase hex characters.
func generateBarcode(at time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")

	return barcodePrefix + at.Format("060102") + strings.ToUpper(random[:barcodeSuffixLength])
}

// canSee reports whether the caller may read the shipment.
func canSee(caller entity.CallerIdentity, s *entity.Shipment) bool {
	switch {
	case caller.IsAdmin():
		return true
	case caller.HasClient() && s.ClientID == caller.ClientID:
		return true
	case caller.HasDriver() && s.AssignedTo == caller.DriverID:
		return true
	default:
		return false
	}
}

// CreateShipment registers a shipment with a barcode unique within its client.
func (srv *shipmentService) CreateShipment(ctx context.Context, caller entity.CallerIdentity, input usecase.CreateShipmentInput) (*entity.Shipment, error) {
	clientID, clientName := caller.ClientID, caller.DisplayName
	switch {
	case caller.IsAdmin():
		if input.ClientID == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("clientId is required")
		}
		clientID = input.ClientID
		clientName = ""
	case !caller.HasClient():
		return nil, domainerrors.ErrIdentityRequired.WithDetails("client identity is required to create a shipment")
	}
	if input.ClientName != "" {
		clientName = input.ClientName
	}

	amount := input.Amount
	switch input.PaymentMode {
	case entity.PaymentModeInvoice:
		amount = 0
	case entity.PaymentModeCOD:
		if amount < 0 {
			return nil, domainerrors.ErrValidationFailed.WithDetails("amount must not be negative")
		}
	default:
		return nil, domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("unknown payment mode %q", input.PaymentMode))
	}

	now := srv.now()
	shipment := &entity.Shipment{
		ClientID:           clientID,
		ClientName:         clientName,
		PaymentMode:        input.PaymentMode,
		Amount:             amount,
		PickupAddress:      input.PickupAddress,
		PickupCity:         input.PickupCity,
		PickupDelegation:   input.PickupDelegation,
		PickupLocation:     input.PickupLocation,
		DeliveryAddress:    input.DeliveryAddress,
		DeliveryCity:       input.DeliveryCity,
		DeliveryDelegation: input.DeliveryDelegation,
		DeliveryLocation:   input.DeliveryLocation,
		RecipientName:      input.RecipientName,
		RecipientPhone:     input.RecipientPhone,
		Notes:              input.Notes,
	}
	shipment.Open(caller.Actor(), constants.NoteShipmentCreated, now)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		shipmentRepo := repoFactory.NewShipmentRepository()

		barcode, err := srv.reserveBarcode(ctx, shipmentRepo, clientID, strings.TrimSpace(input.Barcode), now)
		if err != nil {
			return err
		}
		shipment.Barcode = barcode

		if err := shipmentRepo.Create(ctx, shipment); err != nil {
			return storeError(err, "failed to create shipment")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to create shipment", slog.Any("error", err), slog.String("client_id", clientID))

		return nil, errors.Wrap(err, "failed to create shipment")
	}
	srv.log(ctx).Info("Shipment created", slog.String("shipment_id", shipment.ID), slog.String("barcode", shipment.Barcode))

	return shipment, nil
}

// reserveBarcode checks a requested barcode, or generates a free one.
func (srv *shipmentService) reserveBarcode(ctx context.Context, repo repository.ShipmentRepository, clientID, requested string, now time.Time) (string, error) {
	free := func(barcode string) (bool, error) {
		_, err := repo.FindByBarcode(ctx, clientID, barcode)
		switch {
		case err == nil:
			return false, nil
		case errors.Is(err, repository.ErrShipmentNotFound):
			return true, nil
		default:
			return false, storeError(err, "failed to check barcode")
		}
	}

	if requested != "" {
		ok, err := free(requested)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domainerrors.ErrBarcodeTaken.WithDetails(requested)
		}

		return requested, nil
	}

	for range barcodeMaxAttempts {
		candidate := generateBarcode(now)
		ok, err := free(candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
	}

	return "", domainerrors.ErrBarcodeTaken.WithDetails("could not generate a unique barcode")
}

// TrackShipment finds a shipment by barcode among those visible to the caller.
// Barcodes are unique per client only, so drivers and admins search every
// client and keep the visible matches; more than one is ambiguous.
func (srv *shipmentService) TrackShipment(ctx context.Context, caller entity.CallerIdentity, barcode string) (*entity.Shipment, error) {
	barcode = strings.TrimSpace(barcode)

	if !caller.IsAdmin() && caller.Role == entity.RoleClient {
		if caller.ClientID == "" {
			return nil, domainerrors.ErrShipmentNotFound.WithDetails("barcode " + barcode)
		}
		shipment, err := srv.shipmentRepo.FindByBarcode(ctx, caller.ClientID, barcode)
		if err != nil {
			return nil, storeError(err, "barcode "+barcode)
		}

		return shipment, nil
	}

	matches, err := srv.shipmentRepo.ListByBarcode(ctx, barcode)
	if err != nil {
		return nil, storeError(err, "barcode "+barcode)
	}

	visible := make([]*entity.Shipment, 0, len(matches))
	for _, s := range matches {
		if canSee(caller, s) {
			visible = append(visible, s)
		}
	}

	switch len(visible) {
	case 0:
		return nil, domainerrors.ErrShipmentNotFound.WithDetails("barcode " + barcode)
	case 1:
		return visible[0], nil
	default:
		return nil, domainerrors.ErrBarcodeAmbiguous.WithDetails(fmt.Sprintf("barcode %s matches %d shipments", barcode, len(visible)))
	}
}

// GetShipment returns a shipment visible to the caller.
func (srv *shipmentService) GetShipment(ctx context.Context, caller entity.CallerIdentity, shipmentID string) (*entity.Shipment, error) {
	shipment, err := srv.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, storeError(err, "shipment "+shipmentID)
	}
	if !canSee(caller, shipment) {
		return nil, domainerrors.ErrShipmentNotFound.WithDetails("shipment " + shipmentID)
	}

	return shipment, nil
}

// ListShipments scopes clients to their own shipments; admins may filter freely.
func (srv *shipmentService) ListShipments(ctx context.Context, caller entity.CallerIdentity, filters entity.ShipmentFilter) ([]*entity.Shipment, error) {
	switch {
	case caller.IsAdmin():
	case caller.HasClient():
		filters.ClientID = caller.ClientID
	default:
		return []*entity.Shipment{}, nil
	}

	shipments, err := srv.shipmentRepo.List(ctx, filters)
	if err != nil {
		return nil, storeError(err, "failed to list shipments")
	}

	return filters.Apply(shipments), nil
}

// CancelShipment cancels a shipment that has not been picked up yet and
// detaches it from its planned batch.
func (srv *shipmentService) CancelShipment(ctx context.Context, caller entity.CallerIdentity, shipmentID string) (*entity.Shipment, error) {
	if !caller.IsAdmin() && !caller.HasClient() {
		return nil, domainerrors.ErrIdentityRequired.WithDetails("client identity is required to cancel a shipment")
	}

	var (
		canceled *entity.Shipment
		change   statusChange
	)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		shipmentRepo := repoFactory.NewShipmentRepository()
		batchRepo := repoFactory.NewBatchRepository()

		shipment, err := shipmentRepo.FindByID(ctx, shipmentID)
		if err != nil {
			return storeError(err, "shipment "+shipmentID)
		}
		if !caller.IsAdmin() && shipment.ClientID != caller.ClientID {
			return domainerrors.ErrShipmentNotFound.WithDetails("shipment " + shipmentID)
		}

		var batch *entity.Batch
		if shipment.BatchID != "" {
			batch, err = batchRepo.FindByID(ctx, shipment.BatchID)
			if err != nil && !errors.Is(err, repository.ErrBatchNotFound) {
				return storeError(err, "batch "+shipment.BatchID)
			}
			if batch != nil && batch.Status != entity.BatchStatusPlanned && batch.Status.IsOpen() {
				return domainerrors.ErrBatchStateConflict.WithDetails("shipment belongs to a batch already on the road")
			}
		}

		change, err = transition(shipment, entity.ShipmentStatusCanceled, caller.Actor(), constants.NoteShipmentCanceled, srv.now())
		if err != nil {
			return err
		}

		if batch != nil && batch.Status == entity.BatchStatusPlanned {
			batch.ShipmentIDs = removeID(batch.ShipmentIDs, shipment.ID)
			batch.LastUpdated = shipment.LastUpdated
			if err := batchRepo.Update(ctx, batch); err != nil {
				return storeError(err, "failed to update batch")
			}
		}
		shipment.BatchID = ""
		if err := shipmentRepo.Update(ctx, shipment); err != nil {
			return storeError(err, "failed to update shipment")
		}
		canceled = shipment

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to cancel shipment", slog.Any("error", err), slog.String("shipment_id", shipmentID))

		return nil, errors.Wrap(err, "failed to cancel shipment")
	}

	publishStatusChanges(ctx, srv.publisher, srv.log(ctx), []statusChange{change})

	return canceled, nil
}

// GetClientStats reduces over the caller's client shipments.
func (srv *shipmentService) GetClientStats(ctx context.Context, caller entity.CallerIdentity) (*entity.ShipmentStats, error) {
	if !caller.HasClient() {
		stats := computeShipmentStats(nil)

		return &stats, nil
	}

	shipments, err := srv.shipmentRepo.List(ctx, entity.ShipmentFilter{ClientID: caller.ClientID})
	if err != nil {
		return nil, storeError(err, "failed to list client shipments")
	}
	stats := computeShipmentStats(shipments)

	return &stats, nil
}

// GetOverviewStats reduces over every shipment. Admin only.
func (srv *shipmentService) GetOverviewStats(ctx context.Context, caller entity.CallerIdentity) (*entity.ShipmentStats, error) {
	if !caller.IsAdmin() {
		return nil, domainerrors.ErrForbidden
	}

	shipments, err := srv.shipmentRepo.List(ctx, entity.ShipmentFilter{})
	if err != nil {
		return nil, storeError(err, "failed to list shipments")
	}
	stats := computeShipmentStats(shipments)

	return &stats, nil
}

// ShipmentLabel renders the QR label of a visible shipment.
func (srv *shipmentService) ShipmentLabel(ctx context.Context, caller entity.CallerIdentity, shipmentID string) ([]byte, error) {
	shipment, err := srv.GetShipment(ctx, caller, shipmentID)
	if err != nil {
		return nil, err
	}

	png, err := srv.labels.GenerateShipmentLabel(service.LabelPayload{
		ShipmentID: shipment.ID,
		Barcode:    shipment.Barcode,
		ClientID:   shipment.ClientID,
	})
	if err != nil {
		return nil, domainerrors.ErrInternalError.WithDetails(err.Error())
	}

	return png, nil
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}

	return out
}
