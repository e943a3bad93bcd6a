// Package persistence selects the document store behind the repositories.
package persistence

import (
	"context"
	"log/slog"

	"megafast/config"
	"megafast/internal/domain/constants"
	"megafast/internal/domain/repository"
	"megafast/internal/infra/persistence/firestoredb"
	"megafast/internal/infra/persistence/memory"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Ctx       context.Context
	Config    *config.Config
	Logger    *slog.Logger
	App       *firebase.App `optional:"true"`
}

// Repositories provides every repository of the selected store.
type Repositories struct {
	fx.Out

	TxManager     repository.TransactionManager
	Shipments     repository.ShipmentRepository
	Watcher       repository.ShipmentWatcher
	Batches       repository.BatchRepository
	Users         repository.UserRepository
	Notifications repository.NotificationRepository
}

// New builds the repositories for the configured store provider.
func New(params Params) (Repositories, error) {
	switch params.Config.Store.Provider {
	case constants.StoreProviderMemory:
		params.Logger.Warn("Using in-memory store, data is lost on restart")

		return NewMemory(memory.NewStore()), nil

	case constants.StoreProviderFirestore:
		client, err := firestoredb.New(firestoredb.Params{
			Lifecycle: params.Lifecycle,
			Ctx:       params.Ctx,
			App:       params.App,
			Logger:    params.Logger,
		})
		if err != nil {
			return Repositories{}, err
		}
		params.Logger.Info("Using Firestore store")

		return Repositories{
			TxManager:     firestoredb.NewTransactionManager(client),
			Shipments:     firestoredb.NewShipmentRepository(client),
			Watcher:       firestoredb.NewShipmentWatcher(client),
			Batches:       firestoredb.NewBatchRepository(client),
			Users:         firestoredb.NewUserRepository(client),
			Notifications: firestoredb.NewNotificationRepository(client),
		}, nil

	default:
		return Repositories{}, errors.Errorf("unknown store provider: %s", params.Config.Store.Provider)
	}
}

// NewMemory wires every repository to one in-memory store.
func NewMemory(store *memory.Store) Repositories {
	return Repositories{
		TxManager:     memory.NewTransactionManager(store),
		Shipments:     memory.NewShipmentRepository(store),
		Watcher:       memory.NewShipmentWatcher(store),
		Batches:       memory.NewBatchRepository(store),
		Users:         memory.NewUserRepository(store),
		Notifications: memory.NewNotificationRepository(store),
	}
}
