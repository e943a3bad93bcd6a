package firestoredb

import (
	"context"

	"megafast/internal/domain/constants"
	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

// notificationRepository implements the repository.NotificationRepository interface.
type notificationRepository struct {
	client *firestore.Client
	exec   executor
}

// NewNotificationRepository is the constructor for notificationRepository.
func NewNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &notificationRepository{client: client, exec: executor{client: client}}
}

func (repo *notificationRepository) collection() *firestore.CollectionRef {
	return repo.client.Collection(constants.CollectionNotifications)
}

// Create persists a new notification.
func (repo *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	ref := repo.collection().NewDoc()
	if err := repo.exec.create(ctx, ref, fromNotificationDomain(notification)); err != nil {
		return errors.Wrap(err, "failed to create notification")
	}
	notification.ID = ref.ID

	return nil
}

// FindByID retrieves a notification by its unique ID.
func (repo *notificationRepository) FindByID(ctx context.Context, id string) (*entity.Notification, error) {
	snap, err := repo.exec.get(ctx, repo.collection().Doc(id))
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotificationNotFound
		}

		return nil, errors.Wrap(err, "failed to find notification by ID")
	}

	return toNotificationDomain(snap)
}

// ListByUser retrieves a user's notifications, newest first.
func (repo *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	q := repo.collection().Where("userId", "==", userID)
	if unreadOnly {
		q = q.Where("read", "==", false)
	}

	docs, err := repo.exec.query(ctx, q.OrderBy("createdAt", firestore.Desc))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	notifications := make([]*entity.Notification, 0, len(docs))
	for _, doc := range docs {
		n, err := toNotificationDomain(doc)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// Update overwrites an existing notification.
func (repo *notificationRepository) Update(ctx context.Context, notification *entity.Notification) error {
	err := repo.exec.set(ctx, repo.collection().Doc(notification.ID), fromNotificationDomain(notification))
	if err != nil {
		if isNotFound(err) {
			return repository.ErrNotificationNotFound
		}

		return errors.Wrap(err, "failed to update notification")
	}

	return nil
}
