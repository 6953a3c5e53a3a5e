package ports

import (
	"context"

	"exchange/internal/core/domain/model/kernel"
)

// OrderLocker provides exclusive, order-scoped locking. The lock is the unit
// of atomicity for a transition: it is held from before the current state is
// read until the state mutation and history append are durably committed.
// Transitions on different orders proceed fully in parallel.
type OrderLocker interface {
	// Lock blocks until the order's lock is acquired or ctx is done.
	// On success it returns the release function, which the caller must
	// invoke on every exit path. A deadline or cancellation during the wait
	// fails with a processing-category (retryable) error and leaves the
	// order untouched.
	Lock(ctx context.Context, id kernel.UUID) (func(), error)
}
