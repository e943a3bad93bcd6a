// Package entity contains the core business objects of the project.
package entity

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidStatusTransition is returned when the workflow table forbids a move.
var ErrInvalidStatusTransition = errors.New("invalid status transition")

// PaymentMode tells how a shipment is paid for.
type PaymentMode string

const (
	// PaymentModeCOD means the driver collects Amount at delivery time.
	PaymentModeCOD PaymentMode = "cod"
	// PaymentModeInvoice means the client is billed separately; Amount is always 0.
	PaymentModeInvoice PaymentMode = "invoice"
)

// IsValid checks if the payment mode is known.
func (m PaymentMode) IsValid() bool {
	return m == PaymentModeCOD || m == PaymentModeInvoice
}

// GeoPoint is a GPS coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HistoryEntry is one step of a shipment's audit trail.
type HistoryEntry struct {
	At     time.Time      `json:"at"`
	Status ShipmentStatus `json:"status"`
	By     string         `json:"by"`
	Note   string         `json:"note,omitempty"`
}

// Shipment is a parcel to be delivered.
type Shipment struct {
	ID      string         `json:"id"`      // Store-assigned document ID.
	Barcode string         `json:"barcode"` // Human-scannable tracking code, unique per client.
	Status  ShipmentStatus `json:"status"`

	ClientID   string `json:"clientId"`
	ClientName string `json:"clientName"`
	AssignedTo string `json:"assignedTo,omitempty"` // Driver identity.
	BatchID    string `json:"batchId,omitempty"`

	PaymentMode PaymentMode `json:"paymentMode"`
	Amount      float64     `json:"amount"`

	PickupAddress      string    `json:"pickupAddress"`
	PickupCity         string    `json:"pickupCity"`
	PickupDelegation   string    `json:"pickupDelegation"`
	PickupLocation     *GeoPoint `json:"pickupLocation,omitempty"`
	DeliveryAddress    string    `json:"deliveryAddress"`
	DeliveryCity       string    `json:"deliveryCity"`
	DeliveryDelegation string    `json:"deliveryDelegation"`
	DeliveryLocation   *GeoPoint `json:"deliveryLocation,omitempty"`

	RecipientName  string `json:"recipientName"`
	RecipientPhone string `json:"recipientPhone"`
	Notes          string `json:"notes,omitempty"`

	History       []HistoryEntry `json:"history"`
	CreatedAt     time.Time      `json:"createdAt"`
	LastUpdated   time.Time      `json:"lastUpdated"`
	LastUpdatedBy string         `json:"lastUpdatedBy,omitempty"`
}

// Transition moves the shipment to next and records the step in History.
// It is the only place a shipment status may change.
func (s *Shipment) Transition(next ShipmentStatus, by, note string, at time.Time) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, s.Status, next)
	}
	s.appendHistory(next, by, note, at)

	return nil
}

// Annotate records a history entry that keeps the current status.
func (s *Shipment) Annotate(by, note string, at time.Time) {
	s.appendHistory(s.Status, by, note, at)
}

// Open records the creation entry of a new shipment.
func (s *Shipment) Open(by, note string, at time.Time) {
	s.CreatedAt = at
	s.appendHistory(ShipmentStatusCreated, by, note, at)
}

func (s *Shipment) appendHistory(status ShipmentStatus, by, note string, at time.Time) {
	// History must never go back in time, even if the caller's clock does.
	if n := len(s.History); n > 0 && at.Before(s.History[n-1].At) {
		at = s.History[n-1].At
	}
	s.History = append(s.History, HistoryEntry{At: at, Status: status, By: by, Note: note})
	s.Status = status
	s.LastUpdated = at
	s.LastUpdatedBy = by
}

// LastHistory returns the most recent history entry, if any.
func (s *Shipment) LastHistory() (HistoryEntry, bool) {
	if len(s.History) == 0 {
		return HistoryEntry{}, false
	}

	return s.History[len(s.History)-1], true
}

// Clone returns a deep copy of the shipment.
func (s *Shipment) Clone() *Shipment {
	if s == nil {
		return nil
	}
	out := *s
	if s.PickupLocation != nil {
		p := *s.PickupLocation
		out.PickupLocation = &p
	}
	if s.DeliveryLocation != nil {
		p := *s.DeliveryLocation
		out.DeliveryLocation = &p
	}
	out.History = append([]HistoryEntry(nil), s.History...)

	return &out
}
