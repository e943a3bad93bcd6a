// Package memory implements the repositories on an in-process store.
// Transactions run against a copy of the state that replaces the live one on success.
package memory

import (
	"context"
	"maps"
	"sync"

	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"
)

// state holds the collections. Entities are never mutated in place: every
// write stores a fresh clone, so a shallow copy of the maps is a snapshot.
type state struct {
	shipments     map[string]*entity.Shipment
	batches       map[string]*entity.Batch
	users         map[string]*entity.UserProfile
	notifications map[string]*entity.Notification
}

func newState() *state {
	return &state{
		shipments:     make(map[string]*entity.Shipment),
		batches:       make(map[string]*entity.Batch),
		users:         make(map[string]*entity.UserProfile),
		notifications: make(map[string]*entity.Notification),
	}
}

func (s *state) snapshot() *state {
	return &state{
		shipments:     maps.Clone(s.shipments),
		batches:       maps.Clone(s.batches),
		users:         maps.Clone(s.users),
		notifications: maps.Clone(s.notifications),
	}
}

// Store is a process-local document store.
type Store struct {
	writeMu sync.Mutex // serializes writers, transactions included
	mu      sync.RWMutex
	live    *state

	watchMu  sync.Mutex
	watchers map[int]chan struct{}
	nextID   int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		live:     newState(),
		watchers: make(map[int]chan struct{}),
	}
}

// read runs fn on the transaction state when tx is set, otherwise on the live state.
func (st *Store) read(tx *state, fn func(s *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	st.mu.RLock()
	defer st.mu.RUnlock()

	return fn(st.live)
}

// write applies fn to the transaction state, or to the live state and then
// wakes the watchers.
func (st *Store) write(tx *state, fn func(s *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	st.writeMu.Lock()
	defer st.writeMu.Unlock()

	st.mu.Lock()
	err := fn(st.live)
	st.mu.Unlock()
	if err == nil {
		st.broadcast()
	}

	return err
}

func (st *Store) subscribe() (<-chan struct{}, func()) {
	st.watchMu.Lock()
	defer st.watchMu.Unlock()

	id := st.nextID
	st.nextID++
	ch := make(chan struct{}, 1)
	st.watchers[id] = ch

	return ch, func() {
		st.watchMu.Lock()
		defer st.watchMu.Unlock()
		delete(st.watchers, id)
	}
}

func (st *Store) broadcast() {
	st.watchMu.Lock()
	defer st.watchMu.Unlock()

	for _, ch := range st.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

type transactionManager struct {
	store *Store
}

type repositoryFactory struct {
	store *Store
	tx    *state
}

// NewTransactionManager returns a TransactionManager over the store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute runs fn on a snapshot and publishes the snapshot if fn succeeds.
func (tm *transactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st := tm.store
	st.writeMu.Lock()
	defer st.writeMu.Unlock()

	st.mu.RLock()
	tx := st.live.snapshot()
	st.mu.RUnlock()

	if err := fn(&repositoryFactory{store: st, tx: tx}); err != nil {
		return err
	}

	st.mu.Lock()
	st.live = tx
	st.mu.Unlock()
	st.broadcast()

	return nil
}

func (f *repositoryFactory) NewShipmentRepository() repository.ShipmentRepository {
	return &shipmentRepository{store: f.store, tx: f.tx}
}

func (f *repositoryFactory) NewBatchRepository() repository.BatchRepository {
	return &batchRepository{store: f.store, tx: f.tx}
}

func (f *repositoryFactory) NewUserRepository() repository.UserRepository {
	return &userRepository{store: f.store, tx: f.tx}
}

func (f *repositoryFactory) NewNotificationRepository() repository.NotificationRepository {
	return &notificationRepository{store: f.store, tx: f.tx}
}
