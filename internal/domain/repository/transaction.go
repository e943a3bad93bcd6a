package repository

import "context"

// TransactionManager defines the interface for managing store transactions.
// This allows the use case layer to run atomic multi-document writes without
// depending on a specific store client.
type TransactionManager interface {
	// Execute runs a function within a transaction.
	// If the function returns an error, nothing is written. Otherwise, it's committed.
	// All repository operations within the function use the same transaction.
	// The function may be invoked more than once when the store retries on contention,
	// so it must not have side effects outside the repositories it is given.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances that are bound to a specific transaction.
// Inside a transaction every read must happen before the first write.
type RepositoryFactory interface {
	// NewShipmentRepository returns a ShipmentRepository bound to the current transaction.
	NewShipmentRepository() ShipmentRepository

	// NewBatchRepository returns a BatchRepository bound to the current transaction.
	NewBatchRepository() BatchRepository

	// NewUserRepository returns a UserRepository bound to the current transaction.
	NewUserRepository() UserRepository

	// NewNotificationRepository returns a NotificationRepository bound to the current transaction.
	NewNotificationRepository() NotificationRepository
}
