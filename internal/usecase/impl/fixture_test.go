package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"
	"megafast/internal/domain/service"
	"megafast/internal/infra/persistence"
	"megafast/internal/infra/persistence/memory"
	mocksvc "megafast/internal/mocks/service"
	"megafast/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixtureNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// fixture wires the services over one in-memory store with a fixed clock.
type fixture struct {
	ctx       context.Context
	repos     persistence.Repositories
	publisher *mocksvc.MockEventPublisher
	logger    *slog.Logger

	mu     sync.Mutex
	events []*service.ShipmentEvent
	seq    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:       context.Background(),
		repos:     persistence.NewMemory(memory.NewStore()),
		publisher: mocksvc.NewMockEventPublisher(t),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	f.publisher.EXPECT().
		PublishShipmentEvent(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, event *service.ShipmentEvent) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.events = append(f.events, event)

			return nil
		}).
		Maybe()

	for _, u := range []*entity.UserProfile{
		{ID: "admin-user", Email: "admin@megafast.tn", DisplayName: "Admin", Role: entity.RoleAdmin},
		{ID: "client-user", Email: "client@shop.tn", DisplayName: "Shop", Role: entity.RoleClient, ClientID: "client-1"},
		{ID: "client-user-2", Email: "other@shop.tn", DisplayName: "Other Shop", Role: entity.RoleClient, ClientID: "client-2"},
		{ID: "driver-user", Email: "driver@megafast.tn", DisplayName: "Sami", Role: entity.RoleDriver, DriverID: "driver-1"},
		{ID: "driver-user-2", Email: "driver2@megafast.tn", DisplayName: "Walid", Role: entity.RoleDriver, DriverID: "driver-2"},
	} {
		require.NoError(t, f.repos.Users.Create(f.ctx, u))
	}

	return f
}

func (f *fixture) caller(t *testing.T, userID string) entity.CallerIdentity {
	t.Helper()

	user, err := f.repos.Users.FindByID(f.ctx, userID)
	require.NoError(t, err)

	return user.Caller()
}

// takeEvents returns the events published so far and forgets them.
func (f *fixture) takeEvents() []*service.ShipmentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.events
	f.events = nil

	return out
}

func (f *fixture) notificationService(push service.PushSender) *notificationService {
	srv := NewNotificationService(f.repos.Notifications, f.repos.Users, push, f.logger).(*notificationService)
	srv.now = func() time.Time { return fixtureNow }

	return srv
}

func (f *fixture) batchService() *batchService {
	srv := NewBatchService(f.repos.TxManager, f.repos.Shipments, f.repos.Batches, f.repos.Users,
		f.notificationService(nil), f.publisher, f.logger).(*batchService)
	srv.now = func() time.Time { return fixtureNow }

	return srv
}

func (f *fixture) driverService(txManager repository.TransactionManager) *driverService {
	if txManager == nil {
		txManager = f.repos.TxManager
	}
	srv := NewDriverService(txManager, f.repos.Shipments, f.repos.Batches, f.repos.Watcher, f.publisher, f.logger).(*driverService)
	srv.now = func() time.Time { return fixtureNow.Add(time.Hour) }

	return srv
}

func (f *fixture) shipmentService(labels service.LabelGenerator) *shipmentService {
	srv := NewShipmentService(f.repos.TxManager, f.repos.Shipments, labels, f.publisher, f.logger).(*shipmentService)
	srv.now = func() time.Time { return fixtureNow }

	return srv
}

// seedShipment stores a created COD shipment of client-1; mutate runs before the write.
func (f *fixture) seedShipment(t *testing.T, mutate func(s *entity.Shipment)) *entity.Shipment {
	t.Helper()

	f.seq++
	s := &entity.Shipment{
		Barcode:         fmt.Sprintf("MF250314%06d", f.seq),
		ClientID:        "client-1",
		ClientName:      "Shop",
		PaymentMode:     entity.PaymentModeCOD,
		Amount:          10,
		PickupAddress:   "Rue de Marseille",
		PickupCity:      "Tunis",
		DeliveryAddress: "Avenue Habib Bourguiba",
		DeliveryCity:    "Sousse",
		RecipientName:   "Amal",
		RecipientPhone:  "+21620000000",
	}
	s.Open("client-user", "shipment created", fixtureNow.Add(-time.Hour+time.Duration(f.seq)*time.Minute))
	if mutate != nil {
		mutate(s)
	}
	require.NoError(t, f.repos.Shipments.Create(f.ctx, s))

	return s
}

// seedBatch creates a planned batch for the driver through the batch service.
func (f *fixture) seedBatch(t *testing.T, code, driverID string, shipments ...*entity.Shipment) *entity.BatchSummary {
	t.Helper()

	ids := make([]string, 0, len(shipments))
	for _, s := range shipments {
		ids = append(ids, s.ID)
	}
	summary, err := f.batchService().CreateBatch(f.ctx, f.caller(t, "admin-user"), usecase.CreateBatchInput{
		Code:        code,
		DriverID:    driverID,
		ShipmentIDs: ids,
	})
	require.NoError(t, err)
	f.takeEvents()

	return summary
}

func (f *fixture) shipment(t *testing.T, id string) *entity.Shipment {
	t.Helper()

	s, err := f.repos.Shipments.FindByID(f.ctx, id)
	require.NoError(t, err)

	return s
}

func (f *fixture) batch(t *testing.T, id string) *entity.Batch {
	t.Helper()

	b, err := f.repos.Batches.FindByID(f.ctx, id)
	require.NoError(t, err)

	return b
}

var errStoreDown = errors.New("store unavailable")

// failingTxManager runs real transactions but fails the n-th shipment update inside each one.
type failingTxManager struct {
	repository.TransactionManager
	failOn int
}

func (m *failingTxManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return m.TransactionManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		return fn(&failingFactory{RepositoryFactory: factory, failOn: m.failOn})
	})
}

type failingFactory struct {
	repository.RepositoryFactory
	failOn int
}

func (f *failingFactory) NewShipmentRepository() repository.ShipmentRepository {
	return &failingShipmentRepository{ShipmentRepository: f.RepositoryFactory.NewShipmentRepository(), failOn: f.failOn}
}

type failingShipmentRepository struct {
	repository.ShipmentRepository
	failOn  int
	updates int
}

func (r *failingShipmentRepository) Update(ctx context.Context, s *entity.Shipment) error {
	r.updates++
	if r.updates == r.failOn {
		return errStoreDown
	}

	return r.ShipmentRepository.Update(ctx, s)
}
