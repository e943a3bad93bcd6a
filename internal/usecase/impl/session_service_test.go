package impl

import (
	"testing"
	"time"

	"megafast/config"
	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/domain/service"
	"megafast/internal/infra/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSessionService(t *testing.T, f *fixture, withIssuer bool) (*sessionService, *auth.JWTService, service.PasswordHasher) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-access"
	cfg.SecretKey.Refresh = "test-refresh"
	cfg.Auth = &config.AuthConfig{Provider: "local", BcryptCost: 4, AccessTTL: 10 * time.Minute}

	jwtService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	hasher := auth.NewBcryptHasher(cfg)

	var issuer service.TokenIssuer
	if withIssuer {
		issuer = jwtService
	}
	srv := NewSessionService(f.repos.Users, hasher, issuer, f.logger).(*sessionService)
	srv.now = func() time.Time { return fixtureNow }

	return srv, jwtService, hasher
}

func setPassword(t *testing.T, f *fixture, hasher service.PasswordHasher, userID, password string) {
	t.Helper()

	user, err := f.repos.Users.FindByID(f.ctx, userID)
	require.NoError(t, err)
	user.PasswordHash, err = hasher.Hash(password)
	require.NoError(t, err)
	require.NoError(t, f.repos.Users.Update(f.ctx, user))
}

func TestSessionService_Login(t *testing.T) {
	f := newFixture(t)
	srv, jwtService, hasher := createTestSessionService(t, f, true)
	setPassword(t, f, hasher, "client-user", "secret-pass")

	result, err := srv.Login(f.ctx, "  Client@Shop.TN ", "secret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, int64(600), result.ExpiresIn)
	assert.Equal(t, "client-user", result.User.ID)

	verified, err := jwtService.VerifyAccessToken(f.ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "client-user", verified.UserID)
	assert.Equal(t, []string{"client"}, verified.Roles)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "client@shop.tn", password: "nope"},
		{name: "unknown email", email: "ghost@shop.tn", password: "secret-pass"},
		{name: "account without password", email: "driver@megafast.tn", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.Login(f.ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		})
	}
}

func TestSessionService_Refresh(t *testing.T) {
	f := newFixture(t)
	srv, jwtService, _ := createTestSessionService(t, f, true)

	access, refresh, err := jwtService.GenerateTokens("driver-user", []string{"driver"})
	require.NoError(t, err)

	result, err := srv.Refresh(f.ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, "driver-user", result.User.ID)
	assert.NotEmpty(t, result.AccessToken)

	_, err = srv.Refresh(f.ctx, access)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = srv.Refresh(f.ctx, "garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, orphan, err := jwtService.GenerateTokens("deleted-user", nil)
	require.NoError(t, err)
	_, err = srv.Refresh(f.ctx, orphan)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestSessionService_WithoutIssuer(t *testing.T) {
	f := newFixture(t)
	srv, _, _ := createTestSessionService(t, f, false)

	_, err := srv.Login(f.ctx, "client@shop.tn", "secret-pass")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = srv.Refresh(f.ctx, "any")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	profile, err := srv.ResolveCaller(f.ctx, "client-user")
	require.NoError(t, err)
	assert.Equal(t, "client-1", profile.Caller().ClientID)
}

func TestSessionService_ResolveCaller(t *testing.T) {
	f := newFixture(t)
	srv, _, _ := createTestSessionService(t, f, true)

	_, err := srv.ResolveCaller(f.ctx, "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = srv.ResolveCaller(f.ctx, "ghost")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	profile, err := srv.ResolveCaller(f.ctx, "driver-user")
	require.NoError(t, err)
	assert.Equal(t, entity.CallerIdentity{
		UserID:      "driver-user",
		Role:        entity.RoleDriver,
		DriverID:    "driver-1",
		DisplayName: "Sami",
	}, profile.Caller())
}

func TestSessionService_EnsureAdmin(t *testing.T) {
	f := newFixture(t)
	srv, _, hasher := createTestSessionService(t, f, true)

	require.NoError(t, srv.EnsureAdmin(f.ctx, "", "pass"))
	require.NoError(t, srv.EnsureAdmin(f.ctx, " Boss@MegaFast.tn ", "boss-pass"))
	require.NoError(t, srv.EnsureAdmin(f.ctx, "boss@megafast.tn", "another-pass"))

	admin, err := f.repos.Users.FindByEmail(f.ctx, "boss@megafast.tn")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, admin.Role)
	assert.Equal(t, fixtureNow, admin.CreatedAt)
	assert.True(t, hasher.Check("boss-pass", admin.PasswordHash))
	assert.False(t, hasher.Check("another-pass", admin.PasswordHash))

	result, err := srv.Login(f.ctx, "boss@megafast.tn", "boss-pass")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, result.User.ID)
}
