// Package delivery holds the entry points that expose the usecases.
package delivery

import "context"

// Delivery is a server started by a binary's main loop.
type Delivery interface {
	Serve(ctx context.Context) error
}
