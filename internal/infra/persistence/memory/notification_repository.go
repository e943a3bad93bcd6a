package memory

import (
	"cmp"
	"context"
	"slices"

	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type notificationRepository struct {
	store *Store
	tx    *state
}

// NewNotificationRepository returns a NotificationRepository over the live state.
func NewNotificationRepository(store *Store) repository.NotificationRepository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) Create(_ context.Context, notification *entity.Notification) error {
	return r.store.write(r.tx, func(s *state) error {
		if notification.ID == "" {
			notification.ID = uuid.NewString()
		}
		if _, ok := s.notifications[notification.ID]; ok {
			return errors.Errorf("notification %s already exists", notification.ID)
		}
		stored := *notification
		s.notifications[notification.ID] = &stored

		return nil
	})
}

func (r *notificationRepository) FindByID(_ context.Context, id string) (*entity.Notification, error) {
	var found *entity.Notification
	err := r.store.read(r.tx, func(s *state) error {
		notification, ok := s.notifications[id]
		if !ok {
			return repository.ErrNotificationNotFound
		}
		out := *notification
		found = &out

		return nil
	})

	return found, err
}

func (r *notificationRepository) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	var out []*entity.Notification
	err := r.store.read(r.tx, func(s *state) error {
		out = make([]*entity.Notification, 0)
		for _, notification := range s.notifications {
			if notification.UserID != userID || (unreadOnly && notification.Read) {
				continue
			}
			n := *notification
			out = append(out, &n)
		}

		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return out, err
}

func (r *notificationRepository) Update(_ context.Context, notification *entity.Notification) error {
	return r.store.write(r.tx, func(s *state) error {
		if _, ok := s.notifications[notification.ID]; !ok {
			return repository.ErrNotificationNotFound
		}
		stored := *notification
		s.notifications[notification.ID] = &stored

		return nil
	})
}
