package order

import (
	"fmt"

	"exchange/internal/pkg/errs"
)

// Action is a named command of the order state machine. Each action maps a
// closed set of source states to exactly one target per source; invoking an
// action from any other state is illegal and must not mutate the order.
type Action int

const (
	// ActionUnknown is the zero value and is never a legal action.
	ActionUnknown Action = iota

	// ActionAbandon drops a pending checkout.
	ActionAbandon

	// ActionSubmit commits a pending checkout for seller confirmation.
	ActionSubmit

	// ActionRevert moves the order back one step: approved to submitted,
	// submitted to pending. It is the only action with a source-dependent
	// target.
	ActionRevert

	// ActionApprove is the seller confirming a submitted order.
	ActionApprove

	// ActionReject is the seller declining a submitted order.
	ActionReject

	// ActionSellerLapse cancels a submitted order the seller never answered.
	ActionSellerLapse

	// ActionBuyerLapse cancels a submitted order the buyer never answered.
	ActionBuyerLapse

	// ActionCancel cancels a submitted order administratively.
	ActionCancel

	// ActionFulfill marks the order shipped or picked up.
	ActionFulfill

	// ActionRefund pays the buyer back after approval or fulfillment.
	ActionRefund
)

func actionStrings() map[Action]string {
	return map[Action]string{
		ActionAbandon:     "abandon",
		ActionSubmit:      "submit",
		ActionRevert:      "revert",
		ActionApprove:     "approve",
		ActionReject:      "reject",
		ActionSellerLapse: "seller_lapse",
		ActionBuyerLapse:  "buyer_lapse",
		ActionCancel:      "cancel",
		ActionFulfill:     "fulfill",
		ActionRefund:      "refund",
	}
}

// transitions is the closed transition table: action, then source state,
// then the single target reachable from that source. Nothing outside this
// table is a legal move.
func transitions() map[Action]map[State]State {
	return map[Action]map[State]State{
		ActionAbandon: {StatePending: StateAbandoned},
		ActionSubmit:  {StatePending: StateSubmitted},
		ActionRevert: {
			StateApproved:  StateSubmitted,
			StateSubmitted: StatePending,
		},
		ActionApprove:     {StateSubmitted: StateApproved},
		ActionReject:      {StateSubmitted: StateCanceled},
		ActionSellerLapse: {StateSubmitted: StateCanceled},
		ActionBuyerLapse:  {StateSubmitted: StateCanceled},
		ActionCancel:      {StateSubmitted: StateCanceled},
		ActionFulfill: {
			StateApproved:  StateFulfilled,
			StateCanceled:  StateFulfilled,
			StateAbandoned: StateFulfilled,
		},
		ActionRefund: {
			StateApproved:  StateRefunded,
			StateFulfilled: StateRefunded,
		},
	}
}

// defaultReasons maps actions to the reason recorded when the caller
// supplies none. Actions absent from this map default to no reason.
func defaultReasons() map[Action]Reason {
	return map[Action]Reason{
		ActionSellerLapse: ReasonSellerLapsed,
		ActionBuyerLapse:  ReasonBuyerLapsed,
		ActionReject:      ReasonSellerRejectedOther,
	}
}

// Target resolves the state this action moves to from the given source.
// A (source, action) pair outside the transition table fails with
// validation/invalid_state carrying the current state and action for
// diagnostics.
func (a Action) Target(from State) (State, error) {
	sources, ok := transitions()[a]
	if !ok {
		return StateUnknown, errs.NewInvalidStateError(from.String()).
			With("action", a.String())
	}
	target, ok := sources[from]
	if !ok {
		return StateUnknown, errs.NewInvalidStateError(from.String()).
			With("action", a.String())
	}
	return target, nil
}

// DefaultReason returns the reason recorded when the caller supplies none.
func (a Action) DefaultReason() Reason {
	return defaultReasons()[a]
}

// Validate rejects ActionUnknown and out-of-range values.
func (a Action) Validate() error {
	if _, ok := actionStrings()[a]; !ok {
		return errs.NewValidationErrorWithCause(
			errs.CodeInvalidState,
			fmt.Errorf("%d is not a valid action", a),
		)
	}
	return nil
}

// String returns the snake_case name of the action.
func (a Action) String() string {
	if str, ok := actionStrings()[a]; ok {
		return str
	}
	return "unknown"
}

// ActionFromString parses a wire-format action name.
func ActionFromString(s string) (Action, error) {
	for action, str := range actionStrings() {
		if str == s {
			return action, nil
		}
	}
	return ActionUnknown, errs.NewValidationErrorWithCause(
		errs.CodeInvalidState,
		fmt.Errorf("%q is not a valid action", s),
	)
}

// AllActions returns every action in the table.
func AllActions() []Action {
	return []Action{
		ActionAbandon, ActionSubmit, ActionRevert, ActionApprove,
		ActionReject, ActionSellerLapse, ActionBuyerLapse, ActionCancel,
		ActionFulfill, ActionRefund,
	}
}

// ValidateTable checks the transition table and the default-reason mapping
// for internal consistency: every action appears with at least one source,
// all sources and targets are valid states, and every default reason is
// acceptable for each of the action's targets. Called once at startup so a
// malformed table fails fast rather than silently no-op-ing.
func ValidateTable() error {
	table := transitions()
	for _, action := range AllActions() {
		sources, ok := table[action]
		if !ok || len(sources) == 0 {
			return errs.NewInternalErrorWithCause(
				errs.CodeGeneric,
				fmt.Errorf("action %s has no registered source states", action),
			)
		}
		for from, to := range sources {
			if err := from.Validate(); err != nil {
				return err
			}
			if err := to.Validate(); err != nil {
				return err
			}
			if err := action.DefaultReason().ValidateFor(to); err != nil {
				return errs.NewInternalErrorWithCause(
					errs.CodeGeneric,
					fmt.Errorf("default reason for %s is not acceptable for target %s: %w", action, to, err),
				)
			}
		}
	}
	if len(table) != len(AllActions()) {
		return errs.NewInternalErrorWithCause(
			errs.CodeGeneric,
			fmt.Errorf("transition table has %d actions, expected %d", len(table), len(AllActions())),
		)
	}
	return nil
}
