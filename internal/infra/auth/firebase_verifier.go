package auth

import (
	"context"

	"megafast/internal/domain/service"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
)

// idTokenVerifier is the part of the Firebase auth client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// firebaseVerifier accepts Firebase ID tokens. The role lives in the users
// document; a "role" custom claim is passed along when present.
type firebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier creates a TokenVerifier backed by Firebase Authentication.
func NewFirebaseVerifier(client idTokenVerifier) service.TokenVerifier {
	return &firebaseVerifier{client: client}
}

// VerifyAccessToken validates a Firebase ID token.
func (v *firebaseVerifier) VerifyAccessToken(ctx context.Context, token string) (*service.VerifiedToken, error) {
	idToken, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "invalid firebase id token")
	}
	if idToken.UID == "" {
		return nil, errors.New("firebase id token has no uid")
	}

	verified := &service.VerifiedToken{UserID: idToken.UID, Roles: []string{}}
	if role, ok := idToken.Claims["role"].(string); ok && role != "" {
		verified.Roles = append(verified.Roles, role)
	}

	return verified, nil
}
