package firestoredb

import (
	"context"

	"megafast/internal/domain/constants"
	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

// userRepository implements the repository.UserRepository interface.
type userRepository struct {
	client *firestore.Client
	exec   executor
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(client *firestore.Client) repository.UserRepository {
	return &userRepository{client: client, exec: executor{client: client}}
}

func (repo *userRepository) collection() *firestore.CollectionRef {
	return repo.client.Collection(constants.CollectionUsers)
}

// FindByID retrieves a profile by auth UID.
func (repo *userRepository) FindByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	snap, err := repo.exec.get(ctx, repo.collection().Doc(id))
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by ID")
	}

	return toUserDomain(snap)
}

// FindByEmail retrieves a profile by its stored, lowercased email.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	return repo.findOne(ctx, "email", email)
}

// FindByDriverID retrieves the account acting as driverID.
func (repo *userRepository) FindByDriverID(ctx context.Context, driverID string) (*entity.UserProfile, error) {
	if driverID == "" {
		return nil, repository.ErrUserNotFound
	}

	return repo.findOne(ctx, "driverId", driverID)
}

// ListByClientID retrieves every account acting for clientID.
func (repo *userRepository) ListByClientID(ctx context.Context, clientID string) ([]*entity.UserProfile, error) {
	users := make([]*entity.UserProfile, 0)
	if clientID == "" {
		return users, nil
	}

	docs, err := repo.exec.query(ctx, repo.collection().Where("clientId", "==", clientID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users by client")
	}
	for _, doc := range docs {
		u, err := toUserDomain(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, nil
}

func (repo *userRepository) findOne(ctx context.Context, field, value string) (*entity.UserProfile, error) {
	docs, err := repo.exec.query(ctx, repo.collection().Where(field, "==", value).Limit(1))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find user by %s", field)
	}
	if len(docs) == 0 {
		return nil, repository.ErrUserNotFound
	}

	return toUserDomain(docs[0])
}

func (repo *userRepository) Create(ctx context.Context, user *entity.UserProfile) error {
	ref := repo.collection().NewDoc()
	if user.ID != "" {
		ref = repo.collection().Doc(user.ID)
	}
	if err := repo.exec.create(ctx, ref, fromUserDomain(user)); err != nil {
		return errors.Wrap(err, "failed to create user")
	}
	user.ID = ref.ID

	return nil
}

func (repo *userRepository) Update(ctx context.Context, user *entity.UserProfile) error {
	err := repo.exec.set(ctx, repo.collection().Doc(user.ID), fromUserDomain(user))
	if err != nil {
		if isNotFound(err) {
			return repository.ErrUserNotFound
		}

		return errors.Wrap(err, "failed to update user")
	}

	return nil
}
