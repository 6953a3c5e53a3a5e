package order

import (
	"fmt"

	"exchange/internal/pkg/errs"
)

// State represents one of the fixed lifecycle states of an order.
//
// Lifecycle overview:
//
//	pending ──┬──> submitted ──┬──> approved ──┬──> fulfilled ──> refunded
//	          │        │       │        │      └──> refunded
//	          │        │       └────────┘
//	          │        │      (revert moves back one step)
//	          │        └──> canceled ──> fulfilled
//	          └──> abandoned ──> fulfilled
//
// State is a value object; the legal moves between states live in the
// transition table keyed by Action, not on State itself.
type State int

const (
	// StateUnknown is the zero value and is never a legal order state.
	StateUnknown State = iota

	// StatePending is the initial state: the buyer is still in checkout.
	StatePending

	// StateAbandoned marks a checkout the buyer walked away from.
	StateAbandoned

	// StateSubmitted means the buyer committed and the seller must respond.
	StateSubmitted

	// StateApproved means the seller confirmed the order.
	StateApproved

	// StateCanceled is the terminal rejection state; it is the only state
	// that carries a reason code.
	StateCanceled

	// StateFulfilled means the order has been shipped or picked up.
	StateFulfilled

	// StateRefunded means the buyer was paid back after approval or fulfillment.
	StateRefunded
)

func stateStrings() map[State]string {
	return map[State]string{
		StateUnknown:   "unknown",
		StatePending:   "pending",
		StateAbandoned: "abandoned",
		StateSubmitted: "submitted",
		StateApproved:  "approved",
		StateCanceled:  "canceled",
		StateFulfilled: "fulfilled",
		StateRefunded:  "refunded",
	}
}

func validStateStrings() map[State]string {
	//nolint:exhaustive // StateUnknown is intentionally excluded as it's invalid
	return map[State]string{
		StatePending:   "pending",
		StateAbandoned: "abandoned",
		StateSubmitted: "submitted",
		StateApproved:  "approved",
		StateCanceled:  "canceled",
		StateFulfilled: "fulfilled",
		StateRefunded:  "refunded",
	}
}

// Validate rejects StateUnknown and any value outside the enumeration.
// Used when reconstructing orders from persistence or parsing external input.
func (s State) Validate() error {
	if _, ok := validStateStrings()[s]; !ok {
		return errs.NewValidationErrorWithCause(
			errs.CodeInvalidState,
			fmt.Errorf("%d is not a valid state", s),
		)
	}
	return nil
}

// String returns the snake_case name of the state, as persisted and served
// over the wire. Safe to call on any value; invalid states read "unknown".
func (s State) String() string {
	if str, ok := stateStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// StateFromString parses a persisted or wire-format state name.
func StateFromString(s string) (State, error) {
	for state, str := range validStateStrings() {
		if str == s {
			return state, nil
		}
	}
	return StateUnknown, errs.NewValidationErrorWithCause(
		errs.CodeInvalidState,
		fmt.Errorf("%q is not a valid state", s),
	)
}

// AllStates returns every valid state. Used by read-side query validation
// and by the transition-table self check.
func AllStates() []State {
	return []State{
		StatePending, StateAbandoned, StateSubmitted,
		StateApproved, StateCanceled, StateFulfilled, StateRefunded,
	}
}
