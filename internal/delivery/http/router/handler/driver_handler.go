package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/delivery/http/response"
	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// DriverHandler serves the driver portal.
type DriverHandler struct {
	uc     usecase.DriverUsecase
	logger *slog.Logger
}

// NewDriverHandler is the constructor for DriverHandler, injected by Fx.
func NewDriverHandler(uc usecase.DriverUsecase, logger *slog.Logger) *DriverHandler {
	return &DriverHandler{uc: uc, logger: logger}
}

// UpdateStatusRequest is the body of PATCH /driver/shipments/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=500"`
}

// ListShipments lists the driver's shipments, filtered by query parameters.
func (h *DriverHandler) ListShipments(c echo.Context) error {
	caller := deliverycontext.GetCaller(c)
	ctx := c.Request().Context()

	var (
		shipments []*entity.Shipment
		err       error
	)
	if hasShipmentFilters(c) {
		filter, ferr := shipmentFilterFromQuery(c)
		if ferr != nil {
			return ferr
		}
		shipments, err = h.uc.GetFilteredShipments(ctx, caller, filter)
	} else {
		shipments, err = h.uc.GetShipments(ctx, caller)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, shipments, "")
}

// WatchShipments streams the filtered shipment list as server-sent events.
// A "shipments" event is sent on connect and after every change.
func (h *DriverHandler) WatchShipments(c echo.Context) error {
	caller := deliverycontext.GetCaller(c)
	if !caller.HasDriver() {
		return domainerrors.ErrIdentityRequired.WithDetails("no driver identity")
	}
	filter, err := shipmentFilterFromQuery(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	stream := newEventStream(c)
	stop := make(chan struct{})
	defer close(stop)
	go stream.keepAlive(stop)

	err = h.uc.WatchShipments(ctx, caller, filter, func(shipments []*entity.Shipment) error {
		return stream.Send("shipments", shipments)
	})
	if err != nil {
		// Headers are already sent, so the error can only be reported as an event.
		deliverycontext.Logger(ctx, h.logger).Warn("Shipment watch ended", slog.Any("error", err))
		_ = stream.Send("error", map[string]string{"message": err.Error()})
	}

	return nil
}

// UpdateShipmentStatus moves one of the driver's shipments to a new status.
func (h *DriverHandler) UpdateShipmentStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid status input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	status, ok := entity.ParseShipmentStatus(req.Status)
	if !ok {
		return domainerrors.ErrValidationFailed.WithDetails("unknown status " + req.Status)
	}

	shipment, err := h.uc.UpdateShipmentStatus(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id"), status, req.Notes)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, shipment, "Shipment status updated")
}

// ListBatches lists the driver's batches, optionally by status.
func (h *DriverHandler) ListBatches(c echo.Context) error {
	status, err := batchStatusFromQuery(c)
	if err != nil {
		return err
	}

	batches, err := h.uc.GetBatches(c.Request().Context(), deliverycontext.GetCaller(c), status)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, batches, "")
}

// BatchStatistics counts the driver's batches per status.
func (h *DriverHandler) BatchStatistics(c echo.Context) error {
	stats, err := h.uc.GetBatchStatistics(c.Request().Context(), deliverycontext.GetCaller(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, stats, "")
}

// BatchShipments lists the shipments of one of the driver's batches.
func (h *DriverHandler) BatchShipments(c echo.Context) error {
	shipments, err := h.uc.GetBatchShipments(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, shipments, "")
}

// StartBatch starts the delivery of a planned batch.
func (h *DriverHandler) StartBatch(c echo.Context) error {
	summary, err := h.uc.StartBatchDelivery(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, summary, "Batch delivery started")
}

// CompleteBatch closes a batch whose shipments are all finished.
func (h *DriverHandler) CompleteBatch(c echo.Context) error {
	summary, err := h.uc.CompleteBatchDelivery(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, summary, "Batch delivery completed")
}

// Stats returns the driver dashboard.
func (h *DriverHandler) Stats(c echo.Context) error {
	stats, err := h.uc.GetDriverStats(c.Request().Context(), deliverycontext.GetCaller(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, stats, "")
}

// Cities lists the places found among the driver's shipments.
func (h *DriverHandler) Cities(c echo.Context) error {
	cities, err := h.uc.GetAvailableCities(c.Request().Context(), deliverycontext.GetCaller(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cities, "")
}
