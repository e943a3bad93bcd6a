package model

import "time"

// NotificationModel is the document stored in the `notifications` collection.
type NotificationModel struct {
	UserID    string    `firestore:"userId"`
	Title     string    `firestore:"title"`
	Body      string    `firestore:"body"`
	Kind      string    `firestore:"kind"`
	RefID     string    `firestore:"refId,omitempty"`
	Read      bool      `firestore:"read"`
	CreatedAt time.Time `firestore:"createdAt"`
}
