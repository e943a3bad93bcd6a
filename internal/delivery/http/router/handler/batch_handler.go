package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/delivery/http/response"
	"megafast/internal/domain/entity"
	"megafast/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// BatchHandler serves batch management.
type BatchHandler struct {
	uc     usecase.BatchUsecase
	logger *slog.Logger
}

// NewBatchHandler is the constructor for BatchHandler, injected by Fx.
func NewBatchHandler(uc usecase.BatchUsecase, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{uc: uc, logger: logger}
}

// CreateBatch assigns shipments to a driver.
func (h *BatchHandler) CreateBatch(c echo.Context) error {
	var input usecase.CreateBatchInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid batch input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	summary, err := h.uc.CreateBatch(c.Request().Context(), deliverycontext.GetCaller(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, summary, "Batch created")
}

// CancelBatch cancels an open batch.
func (h *BatchHandler) CancelBatch(c echo.Context) error {
	summary, err := h.uc.CancelBatch(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, summary, "Batch canceled")
}

// GetBatch returns one batch with its projections.
func (h *BatchHandler) GetBatch(c echo.Context) error {
	summary, err := h.uc.GetBatch(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, summary, "")
}

// ListBatches lists batches by status and driver.
func (h *BatchHandler) ListBatches(c echo.Context) error {
	status, err := batchStatusFromQuery(c)
	if err != nil {
		return err
	}
	filter := entity.BatchFilter{AssignedTo: c.QueryParam("driverId"), Status: status}

	batches, err := h.uc.ListBatches(c.Request().Context(), deliverycontext.GetCaller(c), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, batches, "")
}
