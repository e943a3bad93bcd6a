package model

import "time"

// BatchModel is the document stored in the `batches` collection.
type BatchModel struct {
	Code        string     `firestore:"code"`
	AssignedTo  string     `firestore:"assignedTo"`
	Status      string     `firestore:"status"`
	ShipmentIDs []string   `firestore:"shipmentIds"`
	Version     int64      `firestore:"version"`
	CreatedAt   time.Time  `firestore:"createdAt"`
	CreatedBy   string     `firestore:"createdBy"`
	StartedAt   *time.Time `firestore:"startedAt"`
	CompletedAt *time.Time `firestore:"completedAt"`
	CanceledAt  *time.Time `firestore:"canceledAt"`
	LastUpdated time.Time  `firestore:"lastUpdated"`
}
