package order

import (
	"time"

	"exchange/internal/core/domain/model/kernel"
)

// HistoryEntry is an immutable record of one state an order has occupied,
// with the reason and instant of the transition that produced it. Entries
// are created exactly once per successful transition (including the creation
// state), owned exclusively by their order, and never mutated or deleted.
// A correction is expressed as a new entry, never by rewriting history.
type HistoryEntry struct {
	id        kernel.UUID
	orderID   kernel.UUID
	state     State
	reason    Reason
	updatedAt time.Time
}

// NewHistoryEntry records a transition that just happened.
func NewHistoryEntry(orderID kernel.UUID, state State, reason Reason, updatedAt time.Time) HistoryEntry {
	return HistoryEntry{
		id:        kernel.NewUUID(),
		orderID:   orderID,
		state:     state,
		reason:    reason,
		updatedAt: updatedAt.UTC(),
	}
}

// RestoreHistoryEntry reconstructs an entry from persistence.
func RestoreHistoryEntry(
	id kernel.UUID,
	orderID kernel.UUID,
	state State,
	reason Reason,
	updatedAt time.Time,
) (HistoryEntry, error) {
	if err := id.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	if err := orderID.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	if err := state.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	return HistoryEntry{
		id:        id,
		orderID:   orderID,
		state:     state,
		reason:    reason,
		updatedAt: updatedAt.UTC(),
	}, nil
}

// ID returns the entry's unique identifier.
func (h HistoryEntry) ID() kernel.UUID {
	return h.id
}

// OrderID returns the owning order's identifier. An entry is never
// retargeted to a different order.
func (h HistoryEntry) OrderID() kernel.UUID {
	return h.orderID
}

// State returns the state the order occupied.
func (h HistoryEntry) State() State {
	return h.state
}

// Reason returns the transition's reason, or ReasonNone.
func (h HistoryEntry) Reason() Reason {
	return h.reason
}

// UpdatedAt returns the instant of the transition, in UTC.
func (h HistoryEntry) UpdatedAt() time.Time {
	return h.updatedAt
}
