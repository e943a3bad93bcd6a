// Package notification delivers push notifications to mobile devices.
package notification

import (
	"context"
	"log/slog"

	"megafast/config"
	"megafast/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the PushSender, injected by Fx
type Params struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	App    *firebase.App
	Logger *slog.Logger
}

// NewPushSender returns the FCM sender when push is enabled, otherwise nil.
// A nil sender makes notifications in-app only.
func NewPushSender(params Params) (service.PushSender, error) {
	cfg := params.Config.Firebase
	if cfg == nil || !cfg.EnablePush || params.App == nil {
		params.Logger.Info("Push notifications disabled")

		return nil, nil
	}

	client, err := params.App.Messaging(params.Ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get messaging client")
	}

	return NewFirebasePushSender(client, params.Logger), nil
}
