package service

import (
	"context"
	"time"
)

// VerifiedToken is what a bearer token proves about its holder.
type VerifiedToken struct {
	UserID string   // Auth UID, also the `users` document ID.
	Roles  []string // Role claims carried by the token, possibly empty.
}

// TokenVerifier checks bearer tokens presented to the API.
// Implementations exist for locally issued JWTs and Firebase ID tokens.
type TokenVerifier interface {
	// VerifyAccessToken validates the token and returns its subject.
	VerifyAccessToken(ctx context.Context, token string) (*VerifiedToken, error)
}

// TokenIssuer generates tokens for locally authenticated users.
type TokenIssuer interface {
	// GenerateTokens creates a new access token and refresh token for a given user.
	GenerateTokens(userID string, roles []string) (accessToken string, refreshToken string, err error)

	// ParseRefreshToken validates a refresh token and returns its subject.
	ParseRefreshToken(refreshToken string) (userID string, err error)

	// GetAccessTokenDuration returns the configured lifetime of access tokens.
	GetAccessTokenDuration() time.Duration
}
