package ports

import (
	"context"
	"errors"
	"time"

	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/core/domain/model/order"
)

// ErrOrderCodeTaken is returned by Add when the generated order code collides
// with an existing order. The creation flow retries with a fresh code up to a
// bounded attempt count.
var ErrOrderCodeTaken = errors.New("order code already taken")

// OrderRepository defines the persistence contract for order aggregates and
// their append-only state history. History entries are only ever inserted;
// no operation updates or deletes them.
type OrderRepository interface {
	// Add persists a new order together with its initial history entry.
	// A code collision fails with ErrOrderCodeTaken.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the order's current state fields and inserts its
	// uncommitted history entries in the same transaction.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its full state history, oldest entry first.
	// A missing order fails with validation/not_found.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetExpired retrieves orders whose state deadline has passed at the
	// given instant. Used by the expiration escalation job.
	GetExpired(ctx context.Context, now time.Time) ([]*order.Order, error)

	// GetDueForReminder retrieves orders inside their reminder window at the
	// given instant: expiring within lead but not yet expired.
	GetDueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]*order.Order, error)
}
