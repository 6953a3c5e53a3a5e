// Package memlock adapts the in-process keyed mutex to the OrderLocker port.
// Every instance of the service serializes transitions it handles itself;
// deployments running several instances must route an order's transitions to
// one instance or put a distributed lock behind the same port.
package memlock

import (
	"context"

	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/core/ports"
	"exchange/internal/pkg/errs"
	"exchange/internal/pkg/lock"
)

var _ ports.OrderLocker = (*OrderLocker)(nil)

// OrderLocker serializes lifecycle transitions per order ID.
type OrderLocker struct {
	mutex *lock.KeyedMutex
}

// NewOrderLocker creates an in-process order locker.
func NewOrderLocker() *OrderLocker {
	return &OrderLocker{
		mutex: lock.NewKeyedMutex(),
	}
}

// Lock acquires the order's exclusive lock, waiting until ctx is done.
// A cancelled or expired wait is reported as a retryable processing failure.
func (l *OrderLocker) Lock(ctx context.Context, id kernel.UUID) (func(), error) {
	unlock, err := l.mutex.Lock(ctx, id.String())
	if err != nil {
		return nil, errs.NewLockContentionError(err).With("order_id", id.String())
	}
	return unlock, nil
}
