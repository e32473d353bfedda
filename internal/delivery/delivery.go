// Package delivery defines the transports the service exposes.
package delivery

import "context"

// Delivery is a long-running transport started by the application entrypoint.
// Shutdown is registered on the fx lifecycle by each implementation.
type Delivery interface {
	Serve(ctx context.Context) error
}
