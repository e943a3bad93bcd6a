package auth

import (
	"context"
	"log/slog"

	"megafast/config"
	"megafast/internal/domain/constants"
	"megafast/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the token services, injected by Fx
type Params struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	App    *firebase.App
	Logger *slog.Logger
}

// Tokens exposes the token ports of the configured auth provider.
// Issuer is nil with Firebase auth: accounts sign in on the client SDK.
type Tokens struct {
	fx.Out

	Verifier service.TokenVerifier
	Issuer   service.TokenIssuer
}

// NewTokens builds the verifier and issuer for auth.provider.
func NewTokens(params Params) (Tokens, error) {
	provider := constants.AuthProviderLocal
	if params.Config.Auth != nil && params.Config.Auth.Provider != "" {
		provider = params.Config.Auth.Provider
	}

	switch provider {
	case constants.AuthProviderLocal:
		jwtSvc, err := NewJWTService(params.Config)
		if err != nil {
			return Tokens{}, err
		}
		params.Logger.Info("Using local JWT authentication", slog.Duration("access_ttl", jwtSvc.GetAccessTokenDuration()))

		return Tokens{Verifier: jwtSvc, Issuer: jwtSvc}, nil

	case constants.AuthProviderFirebase:
		if params.App == nil {
			return Tokens{}, errors.New("firebase auth requires firebase.projectId")
		}
		client, err := params.App.Auth(params.Ctx)
		if err != nil {
			return Tokens{}, errors.Wrap(err, "failed to get firebase auth client")
		}
		params.Logger.Info("Using Firebase ID token authentication")

		return Tokens{Verifier: NewFirebaseVerifier(client)}, nil

	default:
		return Tokens{}, errors.Errorf("unknown auth provider: %s", provider)
	}
}
