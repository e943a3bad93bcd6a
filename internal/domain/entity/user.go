package entity

import (
	"slices"
	"time"
)

// UserProfile is the `users/<uid>` document. It links an authenticated account
// to its role and to the client or driver identity it acts as.
type UserProfile struct {
	ID           string    `json:"id"`          // Same as the auth UID.
	Email        string    `json:"email"`       // Login identifier.
	DisplayName  string    `json:"displayName"` // Shown on shipments and notifications.
	Role         Role      `json:"role"`
	ClientID     string    `json:"clientId,omitempty"` // Set for client accounts.
	DriverID     string    `json:"driverId,omitempty"` // Set for driver accounts.
	PasswordHash string    `json:"-"`                  // Only used by the local auth provider.
	FCMTokens    []string  `json:"fcmTokens,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Caller builds the identity used by usecases for this profile.
func (u *UserProfile) Caller() CallerIdentity {
	return CallerIdentity{
		UserID:      u.ID,
		Role:        u.Role,
		ClientID:    u.ClientID,
		DriverID:    u.DriverID,
		DisplayName: u.DisplayName,
	}
}

// AddFCMToken registers a push token once. It reports whether the list changed.
func (u *UserProfile) AddFCMToken(token string) bool {
	if token == "" || slices.Contains(u.FCMTokens, token) {
		return false
	}
	u.FCMTokens = append(u.FCMTokens, token)

	return true
}

// Clone returns a deep copy of the profile.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	out := *u
	out.FCMTokens = append([]string(nil), u.FCMTokens...)

	return &out
}
