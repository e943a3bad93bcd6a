package handler

import (
	"strconv"
	"strings"
	"time"

	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// dateLayout is accepted by from/to next to RFC 3339.
const dateLayout = "2006-01-02"

// shipmentFilterFromQuery reads the shipment filters of a listing request.
// Legacy status values such as "pending" are normalized.
func shipmentFilterFromQuery(c echo.Context) (entity.ShipmentFilter, error) {
	filter := entity.ShipmentFilter{
		BatchID:            c.QueryParam("batchId"),
		DeliveryCity:       c.QueryParam("deliveryCity"),
		DeliveryDelegation: c.QueryParam("deliveryDelegation"),
		PickupCity:         c.QueryParam("pickupCity"),
		PickupDelegation:   c.QueryParam("pickupDelegation"),
		ClientID:           c.QueryParam("clientId"),
		AssignedTo:         c.QueryParam("driverId"),
		Barcode:            c.QueryParam("barcode"),
		ClientName:         c.QueryParam("clientName"),
	}

	if raw := c.QueryParam("status"); raw != "" && raw != "all" {
		status, ok := entity.ParseShipmentStatus(raw)
		if !ok {
			return filter, domainerrors.ErrValidationFailed.WithDetails("unknown status " + raw)
		}
		filter.Status = status
	}

	var err error
	if filter.From, err = timeParam(c, "from", false); err != nil {
		return filter, err
	}
	if filter.To, err = timeParam(c, "to", true); err != nil {
		return filter, err
	}
	if filter.MinAmount, err = floatParam(c, "minAmount"); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = floatParam(c, "maxAmount"); err != nil {
		return filter, err
	}

	return filter, nil
}

// batchStatusFromQuery reads an optional batch status. "all" means no filter.
func batchStatusFromQuery(c echo.Context) (entity.BatchStatus, error) {
	raw := c.QueryParam("status")
	if raw == "" || raw == "all" {
		return "", nil
	}
	status, ok := entity.ParseBatchStatus(raw)
	if !ok {
		return "", domainerrors.ErrValidationFailed.WithDetails("unknown status " + raw)
	}

	return status, nil
}

// timeParam parses an RFC 3339 time or a plain date. A plain date used as an
// upper bound covers the whole day.
func timeParam(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(name + " must be a date (YYYY-MM-DD) or RFC 3339 time")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}

	return &t, nil
}

func floatParam(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(name + " must be a number")
	}

	return &v, nil
}

// hasShipmentFilters reports whether the listing request narrows anything.
func hasShipmentFilters(c echo.Context) bool {
	for name, values := range c.QueryParams() {
		if name == "access_token" {
			continue
		}
		for _, v := range values {
			if v != "" && v != "all" {
				return true
			}
		}
	}

	return false
}
