// Package firebase builds the Firebase app shared by Firestore, FCM and ID-token verification.
package firebase

import (
	"context"
	"log/slog"

	"megafast/config"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// New creates the Firebase app. It returns nil when no component needs Firebase.
func New(params Params) (*firebase.App, error) {
	cfg := params.Config.Firebase
	if cfg == nil || cfg.ProjectID == "" {
		params.Logger.Info("Firebase not configured")

		return nil, nil
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(params.Ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}
	params.Logger.Info("Firebase app initialized",
		slog.String("project_id", cfg.ProjectID),
		slog.Bool("credentials_file", cfg.CredentialsPath != ""),
	)

	return app, nil
}
