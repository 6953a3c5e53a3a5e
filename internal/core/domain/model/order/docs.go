// Package order implements the commerce order aggregate and its lifecycle
// state machine. An order moves through checkout, seller confirmation,
// fulfillment and post-fulfillment states under a fixed, closed transition
// table; every successful transition appends an immutable entry to the
// order's state history.
//
// The package includes:
//   - Order: the aggregate root owning state, state reason, timestamps,
//     expiration and the append-only state history
//   - State: the fixed enumeration of lifecycle states
//   - Action: the named commands of the transition table, each with at most
//     one default reason
//   - Reason: the closed set of cancellation reason codes
//   - HistoryEntry: an immutable record of one state the order has occupied
//   - the expiration policy deriving deadlines for time-bounded states
//
// Key business rules:
//   - A transition not present in the table never mutates the order
//   - A state reason is only acceptable on transitions into the canceled
//     state, and only from the enumerated reason set
//   - An order always has at least one history entry, written at creation
//   - History entries are never mutated or deleted once appended
//
// Aggregate methods mutate in memory only; persistence and per-order locking
// belong to the application layer.
package order
