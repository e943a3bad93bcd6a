package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"megafast/internal/domain/entity"
	"megafast/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type userRepository struct {
	store *Store
	tx    *state
}

// NewUserRepository returns a UserRepository over the live state.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) FindByID(_ context.Context, id string) (*entity.UserProfile, error) {
	return r.findOne(func(u *entity.UserProfile) bool { return u.ID == id })
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*entity.UserProfile, error) {
	return r.findOne(func(u *entity.UserProfile) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepository) FindByDriverID(_ context.Context, driverID string) (*entity.UserProfile, error) {
	if driverID == "" {
		return nil, repository.ErrUserNotFound
	}

	return r.findOne(func(u *entity.UserProfile) bool { return u.DriverID == driverID })
}

func (r *userRepository) ListByClientID(_ context.Context, clientID string) ([]*entity.UserProfile, error) {
	out := make([]*entity.UserProfile, 0)
	if clientID == "" {
		return out, nil
	}
	err := r.store.read(r.tx, func(s *state) error {
		for _, user := range s.users {
			if user.ClientID == clientID {
				out = append(out, user.Clone())
			}
		}

		return nil
	})
	slices.SortFunc(out, func(a, b *entity.UserProfile) int { return cmp.Compare(a.ID, b.ID) })

	return out, err
}

func (r *userRepository) findOne(match func(u *entity.UserProfile) bool) (*entity.UserProfile, error) {
	var found *entity.UserProfile
	err := r.store.read(r.tx, func(s *state) error {
		for _, user := range s.users {
			if match(user) {
				found = user.Clone()

				return nil
			}
		}

		return repository.ErrUserNotFound
	})

	return found, err
}

func (r *userRepository) Create(_ context.Context, user *entity.UserProfile) error {
	return r.store.write(r.tx, func(s *state) error {
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		if _, ok := s.users[user.ID]; ok {
			return errors.Errorf("user %s already exists", user.ID)
		}
		s.users[user.ID] = user.Clone()

		return nil
	})
}

func (r *userRepository) Update(_ context.Context, user *entity.UserProfile) error {
	return r.store.write(r.tx, func(s *state) error {
		if _, ok := s.users[user.ID]; !ok {
			return repository.ErrUserNotFound
		}
		s.users[user.ID] = user.Clone()

		return nil
	})
}
