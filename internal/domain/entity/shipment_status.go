package entity

import "strings"

// ShipmentStatus is the lifecycle state of a shipment.
type ShipmentStatus string

const (
	ShipmentStatusCreated   ShipmentStatus = "created"
	ShipmentStatusAssigned  ShipmentStatus = "assigned"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusReturned  ShipmentStatus = "returned"
	ShipmentStatusCanceled  ShipmentStatus = "canceled"
)

// legacyShipmentStatuses maps values still found in older documents and UI
// filters onto the canonical enum.
var legacyShipmentStatuses = map[string]ShipmentStatus{
	"pending": ShipmentStatusCreated,
}

// shipmentTransitions lists the allowed next states for each status.
var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentStatusCreated:   {ShipmentStatusAssigned, ShipmentStatusCanceled},
	ShipmentStatusAssigned:  {ShipmentStatusInTransit, ShipmentStatusDelivered, ShipmentStatusReturned, ShipmentStatusCanceled, ShipmentStatusCreated},
	ShipmentStatusInTransit: {ShipmentStatusDelivered, ShipmentStatusReturned},
}

// AllShipmentStatuses returns the canonical statuses in workflow order.
func AllShipmentStatuses() []ShipmentStatus {
	return []ShipmentStatus{
		ShipmentStatusCreated,
		ShipmentStatusAssigned,
		ShipmentStatusInTransit,
		ShipmentStatusDelivered,
		ShipmentStatusReturned,
		ShipmentStatusCanceled,
	}
}

// ParseShipmentStatus normalizes a raw status, translating legacy values.
// The second return value is false when the value is unknown.
func ParseShipmentStatus(raw string) (ShipmentStatus, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := legacyShipmentStatuses[value]; ok {
		return mapped, true
	}
	status := ShipmentStatus(value)

	return status, status.IsValid()
}

// StoredValues returns every raw value that parses to s, canonical first.
func (s ShipmentStatus) StoredValues() []string {
	values := []string{string(s)}
	for raw, mapped := range legacyShipmentStatuses {
		if mapped == s {
			values = append(values, raw)
		}
	}

	return values
}

// String returns the string representation of the status.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid checks if the status is part of the canonical enum.
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusCreated, ShipmentStatusAssigned, ShipmentStatusInTransit,
		ShipmentStatusDelivered, ShipmentStatusReturned, ShipmentStatusCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether a batch may be completed with a shipment in this state.
func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentStatusDelivered || s == ShipmentStatusReturned
}

// IsClosed reports whether no further transition is possible.
func (s ShipmentStatus) IsClosed() bool {
	return len(shipmentTransitions[s]) == 0
}

// CanTransitionTo checks the workflow table.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range shipmentTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}
