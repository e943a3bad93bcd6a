// Package firestoredb implements the repositories on Cloud Firestore.
package firestoredb

import (
	"context"
	"log/slog"

	"megafast/internal/domain/lifecycle"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Ctx       context.Context
	App       *firebase.App
	Logger    *slog.Logger
}

// New creates the Firestore client from the Firebase app.
func New(params Params) (*firestore.Client, error) {
	if params.App == nil {
		return nil, errors.New("firestore requires a firebase app")
	}

	client, err := params.App.Firestore(params.Ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Firestore client")
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			// Any read proves the credentials and project are usable.
			_, err := client.Collections(ctx).Next()
			if err != nil && !isDone(err) {
				return errors.Wrap(err, "failed to reach Firestore")
			}
			params.Logger.Info("Firestore client ready")

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

// executor reads and writes either directly or through a transaction.
// Transactional reads use the transaction's own context.
type executor struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (e executor) get(ctx context.Context, ref *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	if e.tx != nil {
		return e.tx.Get(ref)
	}

	return ref.Get(ctx)
}

func (e executor) query(ctx context.Context, q firestore.Query) ([]*firestore.DocumentSnapshot, error) {
	if e.tx != nil {
		return e.tx.Documents(q).GetAll()
	}

	return q.Documents(ctx).GetAll()
}

func (e executor) create(ctx context.Context, ref *firestore.DocumentRef, data any) error {
	if e.tx != nil {
		return e.tx.Create(ref, data)
	}
	_, err := ref.Create(ctx, data)

	return err
}

// set overwrites a document. Outside a transaction it first checks that the
// document exists and reports NotFound. Inside one it is a plain upsert that
// never returns NotFound: Firestore forbids reads after writes, so the
// existence check is the caller's earlier read in the same transaction.
func (e executor) set(ctx context.Context, ref *firestore.DocumentRef, data any) error {
	if e.tx != nil {
		return e.tx.Set(ref, data)
	}
	if _, err := ref.Get(ctx); err != nil {
		return err
	}
	_, err := ref.Set(ctx, data)

	return err
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
