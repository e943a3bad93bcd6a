package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/delivery/http/response"
	"megafast/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ShipmentHandler serves the client portal and the admin shipment views.
type ShipmentHandler struct {
	uc     usecase.ShipmentUsecase
	logger *slog.Logger
}

// NewShipmentHandler is the constructor for ShipmentHandler, injected by Fx.
func NewShipmentHandler(uc usecase.ShipmentUsecase, logger *slog.Logger) *ShipmentHandler {
	return &ShipmentHandler{uc: uc, logger: logger}
}

// CreateShipment registers a new shipment.
func (h *ShipmentHandler) CreateShipment(c echo.Context) error {
	var input usecase.CreateShipmentInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid shipment input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	shipment, err := h.uc.CreateShipment(c.Request().Context(), deliverycontext.GetCaller(c), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, shipment, "Shipment created")
}

// ListShipments lists the shipments visible to the caller.
func (h *ShipmentHandler) ListShipments(c echo.Context) error {
	filter, err := shipmentFilterFromQuery(c)
	if err != nil {
		return err
	}

	shipments, err := h.uc.ListShipments(c.Request().Context(), deliverycontext.GetCaller(c), filter)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, shipments, "")
}

// TrackShipment looks a shipment up by barcode.
func (h *ShipmentHandler) TrackShipment(c echo.Context) error {
	shipment, err := h.uc.TrackShipment(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("barcode"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, shipment, "")
}

// GetShipment returns one shipment.
func (h *ShipmentHandler) GetShipment(c echo.Context) error {
	shipment, err := h.uc.GetShipment(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, shipment, "")
}

// CancelShipment cancels a shipment that has not left yet.
func (h *ShipmentHandler) CancelShipment(c echo.Context) error {
	shipment, err := h.uc.CancelShipment(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, shipment, "Shipment canceled")
}

// Label renders the shipment's QR label as a PNG image.
func (h *ShipmentHandler) Label(c echo.Context) error {
	png, err := h.uc.ShipmentLabel(c.Request().Context(), deliverycontext.GetCaller(c), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="label-`+c.Param("id")+`.png"`)

	return c.Blob(http.StatusOK, "image/png", png)
}

// ClientStats returns the dashboard of the caller's client.
func (h *ShipmentHandler) ClientStats(c echo.Context) error {
	stats, err := h.uc.GetClientStats(c.Request().Context(), deliverycontext.GetCaller(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, stats, "")
}

// OverviewStats returns the admin dashboard over every shipment.
func (h *ShipmentHandler) OverviewStats(c echo.Context) error {
	stats, err := h.uc.GetOverviewStats(c.Request().Context(), deliverycontext.GetCaller(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, stats, "")
}
