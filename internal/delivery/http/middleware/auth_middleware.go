package middleware

import (
	"log/slog"
	"slices"
	"strings"

	deliverycontext "megafast/internal/delivery/context"
	"megafast/internal/domain/entity"
	domainerrors "megafast/internal/domain/errors"
	"megafast/internal/domain/service"
	"megafast/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// accessTokenParam carries the token for clients that cannot set headers, such as EventSource.
const accessTokenParam = "access_token"

// AuthMiddleware authenticates bearer tokens and resolves the caller profile.
type AuthMiddleware struct {
	verifier service.TokenVerifier
	sessions usecase.SessionUsecase
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(verifier service.TokenVerifier, sessions usecase.SessionUsecase, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, sessions: sessions, logger: logger}
}

// Authenticate validates the access token and stores the caller identity.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		token, err := m.verifier.VerifyAccessToken(ctx, tokenString)
		if err != nil {
			deliverycontext.Logger(ctx, m.logger).Debug("Token rejected", slog.Any("error", err))

			return domainerrors.ErrUnauthorized.WithDetails("invalid or expired token")
		}

		profile, err := m.sessions.ResolveCaller(ctx, token.UserID)
		if err != nil {
			return errors.WithStack(err)
		}
		deliverycontext.SetCaller(c, profile.Caller())

		return next(c)
	}
}

// RequireRole lets the request through when the caller has one of roles.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := deliverycontext.GetCaller(c)
			if caller.UserID == "" {
				return domainerrors.ErrUnauthorized
			}
			if !slices.Contains(roles, caller.Role) {
				return domainerrors.ErrForbidden.WithDetails("requires role " + strings.Join(entity.Roles(roles).ToStrings(), " or "))
			}

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if token := c.QueryParam(accessTokenParam); token != "" {
			return token, nil
		}

		return "", domainerrors.ErrUnauthorized.WithDetails("authorization header is missing")
	}

	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || tokenString == "" {
		return "", domainerrors.ErrUnauthorized.WithDetails("invalid token format, must be Bearer token")
	}

	return tokenString, nil
}
