package firestoredb

import (
	"context"

	"megafast/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

// transactionManager implements the domain's TransactionManager interface on Firestore transactions.
type transactionManager struct {
	client *firestore.Client
}

// repositoryFactory creates repository instances bound to a single transaction.
type repositoryFactory struct {
	client *firestore.Client
	exec   executor
}

// NewTransactionManager is the constructor for transactionManager.
// This function will be used as an Fx provider.
func NewTransactionManager(client *firestore.Client) repository.TransactionManager {
	return &transactionManager{client: client}
}

// Execute runs fn inside a Firestore transaction. Firestore retries fn on contention.
func (tm *transactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	var fnErr error
	err := tm.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		fnErr = fn(&repositoryFactory{client: tm.client, exec: executor{client: tm.client, tx: tx}})

		return fnErr
	})
	if fnErr != nil {
		// Return the original, more meaningful business error.
		return fnErr
	}
	if err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

func (f *repositoryFactory) NewShipmentRepository() repository.ShipmentRepository {
	return &shipmentRepository{client: f.client, exec: f.exec}
}

func (f *repositoryFactory) NewBatchRepository() repository.BatchRepository {
	return &batchRepository{client: f.client, exec: f.exec}
}

func (f *repositoryFactory) NewUserRepository() repository.UserRepository {
	return &userRepository{client: f.client, exec: f.exec}
}

func (f *repositoryFactory) NewNotificationRepository() repository.NotificationRepository {
	return &notificationRepository{client: f.client, exec: f.exec}
}
