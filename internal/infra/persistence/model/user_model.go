package model

import "time"

// UserModel is the document stored in the `users` collection, keyed by auth UID.
type UserModel struct {
	Email        string    `firestore:"email"`
	DisplayName  string    `firestore:"displayName"`
	Role         string    `firestore:"role"`
	ClientID     string    `firestore:"clientId,omitempty"`
	DriverID     string    `firestore:"driverId,omitempty"`
	PasswordHash string    `firestore:"passwordHash,omitempty"`
	FCMTokens    []string  `firestore:"fcmTokens"`
	CreatedAt    time.Time `firestore:"createdAt"`
}
