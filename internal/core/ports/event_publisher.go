package ports

import (
	"context"
	"time"
)

// OrderStateChangedEvent notifies downstream consumers that an order moved
// to a new state. Published strictly after the transition has committed.
type OrderStateChangedEvent struct {
	OrderID        string     `json:"order_id"`
	Code           string     `json:"code"`
	State          string     `json:"state"`
	StateReason    string     `json:"state_reason,omitempty"`
	StateUpdatedAt time.Time  `json:"state_updated_at"`
	StateExpiresAt *time.Time `json:"state_expires_at,omitempty"`
}

// OrderExpirationReminderEvent warns that an order's state deadline is
// approaching so an external scheduler can nudge the responsible party.
type OrderExpirationReminderEvent struct {
	OrderID        string    `json:"order_id"`
	Code           string    `json:"code"`
	State          string    `json:"state"`
	StateExpiresAt time.Time `json:"state_expires_at"`
	ReminderAt     time.Time `json:"reminder_at"`
}

// OrderEventPublisher pushes lifecycle events to the message broker.
// Publishing happens strictly after commit; a publish failure is reported
// to the caller but never rolls back the transition.
type OrderEventPublisher interface {
	PublishStateChanged(ctx context.Context, event OrderStateChangedEvent) error
	PublishExpirationReminder(ctx context.Context, event OrderExpirationReminderEvent) error
}
