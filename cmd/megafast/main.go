package main

import (
	"context"
	"log/slog"
	"os"

	"megafast/config"
	"megafast/internal/delivery"
	"megafast/internal/delivery/http"
	"megafast/internal/delivery/http/middleware"
	"megafast/internal/delivery/http/router/handler"
	"megafast/internal/domain/service"
	"megafast/internal/infra/auth"
	"megafast/internal/infra/firebase"
	logs "megafast/internal/infra/log"
	"megafast/internal/infra/notification"
	"megafast/internal/infra/persistence"
	"megafast/internal/infra/pubsub"
	"megafast/internal/infra/qrcode"
	"megafast/internal/usecase"
	"megafast/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			bootstrapAdmin,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		firebase.New,
		persistence.New,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewTokens,
			notification.NewPushSender,
			pubsub.NewEventPublisher,
			newLabelGenerator,
		),
	)
}

// newLabelGenerator creates the QR label generator from configuration
func newLabelGenerator(cfg *config.Config) service.LabelGenerator {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewLabelGenerator(0, "M")
	}

	return qrcode.NewLabelGenerator(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewNotificationService,
			impl.NewDriverService,
			impl.NewShipmentService,
			impl.NewBatchService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewSessionHandler,
			handler.NewDriverHandler,
			handler.NewShipmentHandler,
			handler.NewBatchHandler,
			handler.NewNotificationHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// bootstrapAdmin creates the configured admin account once the store is reachable.
func bootstrapAdmin(lc fx.Lifecycle, cfg *config.Config, sessions usecase.SessionUsecase) {
	if cfg.Bootstrap == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sessions.EnsureAdmin(ctx, cfg.Bootstrap.Admin.Email, cfg.Bootstrap.Admin.Password)
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
