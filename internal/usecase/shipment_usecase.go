package usecase

import (
	"context"

	"megafast/internal/domain/entity"
)

// CreateShipmentInput carries the fields a client fills in for a new shipment.
type CreateShipmentInput struct {
	ClientID           string             `json:"clientId"`   // Only read for admin callers.
	ClientName         string             `json:"clientName"` // Defaults to the caller's display name.
	Barcode            string             `json:"barcode"`    // Generated when empty.
	PaymentMode        entity.PaymentMode `json:"paymentMode" validate:"required,oneof=cod invoice"`
	Amount             float64            `json:"amount" validate:"gte=0"`
	PickupAddress      string             `json:"pickupAddress" validate:"required"`
	PickupCity         string             `json:"pickupCity" validate:"required"`
	PickupDelegation   string             `json:"pickupDelegation"`
	PickupLocation     *entity.GeoPoint   `json:"pickupLocation"`
	DeliveryAddress    string             `json:"deliveryAddress" validate:"required"`
	DeliveryCity       string             `json:"deliveryCity" validate:"required"`
	DeliveryDelegation string             `json:"deliveryDelegation"`
	DeliveryLocation   *entity.GeoPoint   `json:"deliveryLocation"`
	RecipientName      string             `json:"recipientName" validate:"required"`
	RecipientPhone     string             `json:"recipientPhone" validate:"required"`
	Notes              string             `json:"notes"`
}

// ShipmentUsecase is the client portal plus the admin view over all shipments.
type ShipmentUsecase interface {
	// CreateShipment registers a new shipment for the caller's client (or any client for admins).
	CreateShipment(ctx context.Context, caller entity.CallerIdentity, input CreateShipmentInput) (*entity.Shipment, error)

	// TrackShipment looks a shipment up by barcode.
	TrackShipment(ctx context.Context, caller entity.CallerIdentity, barcode string) (*entity.Shipment, error)

	// GetShipment returns one shipment visible to the caller.
	GetShipment(ctx context.Context, caller entity.CallerIdentity, shipmentID string) (*entity.Shipment, error)

	// ListShipments lists the shipments visible to the caller matching filters.
	ListShipments(ctx context.Context, caller entity.CallerIdentity, filters entity.ShipmentFilter) ([]*entity.Shipment, error)

	// CancelShipment cancels a shipment that has not left yet.
	CancelShipment(ctx context.Context, caller entity.CallerIdentity, shipmentID string) (*entity.Shipment, error)

	// GetClientStats computes the dashboard of the caller's client.
	GetClientStats(ctx context.Context, caller entity.CallerIdentity) (*entity.ShipmentStats, error)

	// GetOverviewStats computes the admin dashboard over every shipment.
	GetOverviewStats(ctx context.Context, caller entity.CallerIdentity) (*entity.ShipmentStats, error)

	// ShipmentLabel renders the printable QR label of a shipment.
	ShipmentLabel(ctx context.Context, caller entity.CallerIdentity, shipmentID string) ([]byte, error)
}
