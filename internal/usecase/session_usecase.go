package usecase

import (
	"context"

	"megafast/internal/domain/entity"
)

// LoginResult is returned by a successful local login.
type LoginResult struct {
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
	ExpiresIn    int64               `json:"expiresIn"` // Seconds.
	User         *entity.UserProfile `json:"user"`
}

// SessionUsecase defines authentication and identity resolution.
type SessionUsecase interface {
	// Login checks email and password and issues tokens. Only used by the local auth provider.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Refresh exchanges a refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)

	// ResolveCaller loads the profile behind an authenticated user ID.
	ResolveCaller(ctx context.Context, userID string) (*entity.UserProfile, error)

	// EnsureAdmin creates the bootstrap admin account if no account uses this email yet.
	EnsureAdmin(ctx context.Context, email, password string) error
}
