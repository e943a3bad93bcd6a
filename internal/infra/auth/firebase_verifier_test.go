package auth

import (
	"context"
	"errors"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIDTokenVerifier struct {
	token *firebaseauth.Token
	err   error
}

func (s stubIDTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*firebaseauth.Token, error) {
	return s.token, s.err
}

func TestFirebaseVerifier_PassesRoleClaim(t *testing.T) {
	verifier := NewFirebaseVerifier(stubIDTokenVerifier{token: &firebaseauth.Token{
		UID:    "uid-1",
		Claims: map[string]any{"role": "client"},
	}})

	verified, err := verifier.VerifyAccessToken(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", verified.UserID)
	assert.Equal(t, []string{"client"}, verified.Roles)
}

func TestFirebaseVerifier_WithoutRoleClaim(t *testing.T) {
	verifier := NewFirebaseVerifier(stubIDTokenVerifier{token: &firebaseauth.Token{UID: "uid-1"}})

	verified, err := verifier.VerifyAccessToken(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Empty(t, verified.Roles)
}

func TestFirebaseVerifier_Errors(t *testing.T) {
	_, err := NewFirebaseVerifier(stubIDTokenVerifier{err: errors.New("expired")}).VerifyAccessToken(context.Background(), "x")
	assert.ErrorContains(t, err, "invalid firebase id token")

	_, err = NewFirebaseVerifier(stubIDTokenVerifier{token: &firebaseauth.Token{}}).VerifyAccessToken(context.Background(), "x")
	assert.ErrorContains(t, err, "no uid")
}
