// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"megafast/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations over the `users` collection.
type UserRepository interface {
	// FindByID retrieves a profile by its auth UID.
	FindByID(ctx context.Context, id string) (*entity.UserProfile, error)

	// FindByEmail retrieves a profile by email address.
	FindByEmail(ctx context.Context, email string) (*entity.UserProfile, error)

	// FindByDriverID retrieves the account acting as the given driver.
	FindByDriverID(ctx context.Context, driverID string) (*entity.UserProfile, error)

	// ListByClientID retrieves every account acting for the given client.
	ListByClientID(ctx context.Context, clientID string) ([]*entity.UserProfile, error)

	// Create persists a new profile. An empty ID is assigned by the store.
	Create(ctx context.Context, user *entity.UserProfile) error

	// Update overwrites an existing profile.
	Update(ctx context.Context, user *entity.UserProfile) error
}
