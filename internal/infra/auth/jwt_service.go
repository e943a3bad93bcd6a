package auth

import (
	"context"
	"time"

	"megafast/config"
	"megafast/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTService issues and verifies locally signed HS256 tokens.
type JWTService struct {
	accessSecret  string        // Secret key for signing access tokens.
	refreshSecret string        // Secret key for signing refresh tokens.
	accessTTL     time.Duration // Time-to-live for access tokens.
	refreshTTL    time.Duration // Time-to-live for refresh tokens.
	now           func() time.Time
}

// NewJWTService is the constructor for JWTService.
func NewJWTService(cfg *config.Config) (*JWTService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	accessTTL, refreshTTL := 15*time.Minute, 7*24*time.Hour
	if cfg.Auth != nil {
		if cfg.Auth.AccessTTL > 0 {
			accessTTL = cfg.Auth.AccessTTL
		}
		if cfg.Auth.RefreshTTL > 0 {
			refreshTTL = cfg.Auth.RefreshTTL
		}
	}

	return &JWTService{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// GenerateTokens creates a new access token and refresh token for a given user and roles.
func (s *JWTService) GenerateTokens(userID string, roles []string) (accessToken string, refreshToken string, err error) {
	accessToken, err = s.generateToken(userID, roles, s.accessTTL, s.accessSecret, tokenTypeAccess)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = s.generateToken(userID, nil, s.refreshTTL, s.refreshSecret, tokenTypeRefresh)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// VerifyAccessToken validates an access token and returns its subject and roles.
func (s *JWTService) VerifyAccessToken(_ context.Context, token string) (*service.VerifiedToken, error) {
	claims, err := s.parse(token, s.accessSecret, tokenTypeAccess)
	if err != nil {
		return nil, err
	}

	userID, _ := claims.GetSubject()
	rolesClaim, _ := claims["roles"].([]any)
	roles := make([]string, 0, len(rolesClaim))
	for _, r := range rolesClaim {
		if role, ok := r.(string); ok {
			roles = append(roles, role)
		}
	}

	return &service.VerifiedToken{UserID: userID, Roles: roles}, nil
}

// ParseRefreshToken validates a refresh token and returns its subject.
func (s *JWTService) ParseRefreshToken(refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken, s.refreshSecret, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	userID, _ := claims.GetSubject()

	return userID, nil
}

// GetAccessTokenDuration returns the configured duration for access tokens.
func (s *JWTService) GetAccessTokenDuration() time.Duration {
	return s.accessTTL
}

func (s *JWTService) parse(tokenString, secret, wantType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return nil, errors.Errorf("expected %s token", wantType)
	}
	if sub, _ := claims.GetSubject(); sub == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

// generateToken is a private helper to create a JWT with specific claims.
func (s *JWTService) generateToken(userID string, roles []string, ttl time.Duration, secret, tokenType string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  userID,              // Subject (who the token is for)
		"iat":  now.Unix(),          // Issued At
		"exp":  now.Add(ttl).Unix(), // Expiration Time
		"type": tokenType,           // Type of token (access or refresh)
	}
	// Only add roles to the access token for stateless authorization.
	if roles != nil {
		claims["roles"] = roles
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}
