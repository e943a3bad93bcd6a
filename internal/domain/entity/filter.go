package entity

import (
	"strings"
	"time"
)

// ShipmentFilter narrows a shipment listing. Equality fields are pushed down to
// the store query; the rest are applied after the fetch by Matches.
type ShipmentFilter struct {
	// Store-side equality filters.
	Status             ShipmentStatus `json:"status,omitempty"`
	BatchID            string         `json:"batchId,omitempty"`
	DeliveryCity       string         `json:"deliveryCity,omitempty"`
	DeliveryDelegation string         `json:"deliveryDelegation,omitempty"`
	PickupCity         string         `json:"pickupCity,omitempty"`
	PickupDelegation   string         `json:"pickupDelegation,omitempty"`

	// Scoping, set by the usecase from the caller identity or admin input.
	ClientID   string `json:"clientId,omitempty"`
	AssignedTo string `json:"assignedTo,omitempty"`

	// Applied in memory after the fetch.
	Barcode    string     `json:"barcode,omitempty"`
	ClientName string     `json:"clientName,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	MinAmount  *float64   `json:"minAmount,omitempty"`
	MaxAmount  *float64   `json:"maxAmount,omitempty"`
}

// Matches applies the in-memory part of the filter. Equality fields are
// checked too, so a store that ignores some of them still yields the right set.
func (f ShipmentFilter) Matches(s *Shipment) bool {
	if s == nil {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if !equalIfSet(f.BatchID, s.BatchID) || !equalIfSet(f.ClientID, s.ClientID) || !equalIfSet(f.AssignedTo, s.AssignedTo) {
		return false
	}
	if !equalIfSet(f.DeliveryCity, s.DeliveryCity) || !equalIfSet(f.DeliveryDelegation, s.DeliveryDelegation) {
		return false
	}
	if !equalIfSet(f.PickupCity, s.PickupCity) || !equalIfSet(f.PickupDelegation, s.PickupDelegation) {
		return false
	}
	if f.Barcode != "" && !containsFold(s.Barcode, f.Barcode) {
		return false
	}
	if f.ClientName != "" && !containsFold(s.ClientName, f.ClientName) {
		return false
	}
	if f.From != nil && s.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && s.CreatedAt.After(*f.To) {
		return false
	}
	if f.MinAmount != nil && s.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && s.Amount > *f.MaxAmount {
		return false
	}

	return true
}

// Apply returns the shipments accepted by Matches, keeping their order.
func (f ShipmentFilter) Apply(shipments []*Shipment) []*Shipment {
	out := make([]*Shipment, 0, len(shipments))
	for _, s := range shipments {
		if f.Matches(s) {
			out = append(out, s)
		}
	}

	return out
}

func equalIfSet(want, got string) bool {
	return want == "" || want == got
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// BatchFilter narrows a batch listing.
type BatchFilter struct {
	AssignedTo string
	Status     BatchStatus
}

// Matches reports whether the batch satisfies the filter.
func (f BatchFilter) Matches(b *Batch) bool {
	if b == nil {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}

	return equalIfSet(f.AssignedTo, b.AssignedTo)
}
