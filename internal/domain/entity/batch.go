package entity

import (
	"strings"
	"time"
)

// BatchStatus is the lifecycle state of a delivery run.
type BatchStatus string

const (
	BatchStatusPlanned    BatchStatus = "planned"
	BatchStatusInProgress BatchStatus = "in_progress"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusCanceled   BatchStatus = "canceled"
)

// legacyBatchStatuses maps values written by older admin screens.
var legacyBatchStatuses = map[string]BatchStatus{
	"active": BatchStatusPlanned,
}

// AllBatchStatuses returns the canonical statuses in lifecycle order.
func AllBatchStatuses() []BatchStatus {
	return []BatchStatus{BatchStatusPlanned, BatchStatusInProgress, BatchStatusCompleted, BatchStatusCanceled}
}

// ParseBatchStatus normalizes a raw status, translating legacy values.
func ParseBatchStatus(raw string) (BatchStatus, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := legacyBatchStatuses[value]; ok {
		return mapped, true
	}
	status := BatchStatus(value)

	return status, status.IsValid()
}

// StoredValues returns every raw value that parses to s, canonical first.
func (s BatchStatus) StoredValues() []string {
	values := []string{string(s)}
	for raw, mapped := range legacyBatchStatuses {
		if mapped == s {
			values = append(values, raw)
		}
	}

	return values
}

// String returns the string representation of the status.
func (s BatchStatus) String() string {
	return string(s)
}

// IsValid checks if the status is part of the canonical enum.
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPlanned, BatchStatusInProgress, BatchStatusCompleted, BatchStatusCanceled:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the batch can still change.
func (s BatchStatus) IsOpen() bool {
	return s == BatchStatusPlanned || s == BatchStatusInProgress
}

// Batch is a set of shipments grouped for one driver's delivery run.
// Counters are not stored here; see BatchSummary.
type Batch struct {
	ID          string      `json:"id"`
	Code        string      `json:"code"`
	AssignedTo  string      `json:"assignedTo"`
	Status      BatchStatus `json:"status"`
	ShipmentIDs []string    `json:"shipmentIds"`
	Version     int64       `json:"version"`

	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CanceledAt  *time.Time `json:"canceledAt,omitempty"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// MoveTo changes the batch status, stamping the matching timestamp and
// bumping Version so concurrent writers can detect each other.
func (b *Batch) MoveTo(next BatchStatus, at time.Time) {
	b.Status = next
	b.LastUpdated = at
	b.Version++

	switch next {
	case BatchStatusInProgress:
		b.StartedAt = &at
	case BatchStatusCompleted:
		b.CompletedAt = &at
	case BatchStatusCanceled:
		b.CanceledAt = &at
	}
}

// Clone returns a deep copy of the batch.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	out := *b
	out.ShipmentIDs = append([]string(nil), b.ShipmentIDs...)
	out.StartedAt = cloneTime(b.StartedAt)
	out.CompletedAt = cloneTime(b.CompletedAt)
	out.CanceledAt = cloneTime(b.CanceledAt)

	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t

	return &v
}
