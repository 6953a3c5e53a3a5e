package order

import (
	"errors"
	"time"

	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through NewOrder or RestoreOrder. This ensures all orders are properly
// validated.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Order is the aggregate root of the commerce order lifecycle. It owns the
// current state, the state reason, the transition timestamps, the derived
// expiration deadline, and the append-only state history.
//
// Invariants:
//   - state is always one of the fixed enumeration; a transition outside the
//     table never mutates the order
//   - stateReason is empty unless the state is reason-bearing (canceled),
//     and then drawn from the closed reason set
//   - the history is never empty: creation writes the first entry
//   - history entries are appended, never mutated or removed
//
// All mutation goes through Apply (or the per-action wrappers); concurrency
// control and persistence are the application layer's concern.
type Order struct {
	id    kernel.UUID
	code  Code
	mode  Mode
	state State

	stateReason    Reason
	stateUpdatedAt time.Time
	stateExpiresAt *time.Time

	// lastOfferFrom is a weak reference to whoever made the most recent
	// offer; it answers "who must respond next" for offer-mode orders.
	lastOfferFrom *Participant

	history []HistoryEntry
	// persistedHistory is the number of leading history entries already
	// durably stored; everything past it is pending insertion.
	persistedHistory int

	isConstructed bool
}

// NewOrder creates an order in StatePending with its initial history entry.
// The code must already be generated (uniqueness is the repository's job).
func NewOrder(id kernel.UUID, code Code, mode Mode, now time.Time) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCode(code),
		o.setMode(mode),
	); err != nil {
		return nil, err
	}

	now = now.UTC()
	o.state = StatePending
	o.stateReason = ReasonNone
	o.stateUpdatedAt = now
	o.stateExpiresAt = ExpiresAt(StatePending, now)
	o.history = append(o.history, NewHistoryEntry(o.id, StatePending, ReasonNone, now))

	return o, nil
}

// RestoreOrder reconstructs an order from persistence. The supplied history
// is treated as already durable; it must not be empty and every entry must
// belong to this order.
func RestoreOrder(
	id kernel.UUID,
	code Code,
	mode Mode,
	state State,
	reason Reason,
	stateUpdatedAt time.Time,
	stateExpiresAt *time.Time,
	lastOfferFrom *Participant,
	history []HistoryEntry,
) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCode(code),
		o.setMode(mode),
		state.Validate(),
		reason.ValidateFor(state),
	); err != nil {
		return nil, err
	}

	if len(history) == 0 {
		return nil, errs.NewValidationError(errs.CodeInvalidOrder).
			With("order_id", id.String()).
			With("detail", "order has no state history")
	}
	for _, entry := range history {
		if !entry.OrderID().IsEqual(id) {
			return nil, errs.NewValidationError(errs.CodeInvalidOrder).
				With("order_id", id.String()).
				With("detail", "history entry belongs to a different order")
		}
	}
	if lastOfferFrom != nil {
		if err := lastOfferFrom.Validate(); err != nil {
			return nil, err
		}
	}

	o.state = state
	o.stateReason = reason
	o.stateUpdatedAt = stateUpdatedAt.UTC()
	o.stateExpiresAt = stateExpiresAt
	o.lastOfferFrom = lastOfferFrom
	o.history = append(o.history, history...)
	o.persistedHistory = len(history)

	return o, nil
}

// Validate ensures the order was built through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Code returns the human-facing order code.
func (o *Order) Code() Code {
	return o.code
}

// Mode returns whether this is a buy or an offer order.
func (o *Order) Mode() Mode {
	return o.mode
}

// State returns the current lifecycle state.
func (o *Order) State() State {
	return o.state
}

// StateReason returns the reason attached to the current state, or ReasonNone.
func (o *Order) StateReason() Reason {
	return o.stateReason
}

// StateUpdatedAt returns the instant of the most recent transition, in UTC.
func (o *Order) StateUpdatedAt() time.Time {
	return o.stateUpdatedAt
}

// StateExpiresAt returns the derived deadline for the current state,
// or nil for states with no expiration.
func (o *Order) StateExpiresAt() *time.Time {
	if o.stateExpiresAt == nil {
		return nil
	}
	t := *o.stateExpiresAt
	return &t
}

// LastOfferFrom returns who made the most recent offer, or nil when no offer
// has been recorded.
func (o *Order) LastOfferFrom() *Participant {
	if o.lastOfferFrom == nil {
		return nil
	}
	p := *o.lastOfferFrom
	return &p
}

// History returns a copy of the full state history, oldest first.
func (o *Order) History() []HistoryEntry {
	out := make([]HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

// UncommittedHistory returns the entries appended since the order was loaded
// or last persisted. The repository inserts exactly these.
func (o *Order) UncommittedHistory() []HistoryEntry {
	out := make([]HistoryEntry, len(o.history)-o.persistedHistory)
	copy(out, o.history[o.persistedHistory:])
	return out
}

// MarkHistoryPersisted records that all current history entries are durable.
// Called by the repository after a successful insert.
func (o *Order) MarkHistoryPersisted() {
	o.persistedHistory = len(o.history)
}

// Apply executes one named action against the order's current state.
//
// It resolves the transition table (an unregistered pair fails with
// validation/invalid_state carrying the current state), falls back to the
// action's default reason when none is given, validates the reason against
// the target, and only then mutates: state, reason, stateUpdatedAt, the
// recomputed expiration, and one new history entry. On any failure the
// order is left untouched.
func (o *Order) Apply(action Action, explicitReason Reason, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := action.Validate(); err != nil {
		return err
	}

	target, err := action.Target(o.state)
	if err != nil {
		return err
	}

	reason := explicitReason
	if reason == ReasonNone {
		reason = action.DefaultReason()
	}
	if err := reason.ValidateFor(target); err != nil {
		return err
	}

	now = now.UTC()
	o.state = target
	o.stateReason = reason
	o.stateUpdatedAt = now
	o.stateExpiresAt = ExpiresAt(target, now)
	o.history = append(o.history, NewHistoryEntry(o.id, target, reason, now))

	return nil
}

// Abandon drops a pending checkout.
func (o *Order) Abandon(now time.Time) error {
	return o.Apply(ActionAbandon, ReasonNone, now)
}

// Submit commits a pending checkout for seller confirmation.
func (o *Order) Submit(now time.Time) error {
	return o.Apply(ActionSubmit, ReasonNone, now)
}

// Revert moves the order back one step (approved to submitted, submitted
// to pending).
func (o *Order) Revert(now time.Time) error {
	return o.Apply(ActionRevert, ReasonNone, now)
}

// Approve confirms a submitted order.
func (o *Order) Approve(now time.Time) error {
	return o.Apply(ActionApprove, ReasonNone, now)
}

// Reject declines a submitted order. With ReasonNone the default
// seller_rejected_other is recorded.
func (o *Order) Reject(reason Reason, now time.Time) error {
	return o.Apply(ActionReject, reason, now)
}

// SellerLapse cancels a submitted order the seller never answered.
func (o *Order) SellerLapse(now time.Time) error {
	return o.Apply(ActionSellerLapse, ReasonNone, now)
}

// BuyerLapse cancels a submitted order the buyer never answered.
func (o *Order) BuyerLapse(now time.Time) error {
	return o.Apply(ActionBuyerLapse, ReasonNone, now)
}

// Cancel cancels a submitted order, optionally with an explicit reason.
func (o *Order) Cancel(reason Reason, now time.Time) error {
	return o.Apply(ActionCancel, reason, now)
}

// Fulfill marks the order shipped or picked up.
func (o *Order) Fulfill(now time.Time) error {
	return o.Apply(ActionFulfill, ReasonNone, now)
}

// Refund pays the buyer back after approval or fulfillment.
func (o *Order) Refund(now time.Time) error {
	return o.Apply(ActionRefund, ReasonNone, now)
}

// IsOfferable reports whether offers may still be made against the order.
func (o *Order) IsOfferable() bool {
	return o.state == StatePending || o.state == StateSubmitted
}

// CanCommit reports whether the order has everything required to be
// committed. Shipping and payment presence are delegated predicates owned
// by the surrounding business logic.
func (o *Order) CanCommit(hasShippingInfo, hasPaymentInfo bool) bool {
	return hasShippingInfo && hasPaymentInfo
}

// LastSubmittedAt returns when the order most recently reached
// StateSubmitted, from the history ledger, or nil if it never has.
func (o *Order) LastSubmittedAt() *time.Time {
	return o.lastStateAt(StateSubmitted)
}

// LastApprovedAt returns when the order most recently reached
// StateApproved, or nil if it never has.
func (o *Order) LastApprovedAt() *time.Time {
	return o.lastStateAt(StateApproved)
}

func (o *Order) lastStateAt(state State) *time.Time {
	for i := len(o.history) - 1; i >= 0; i-- {
		if o.history[i].State() == state {
			t := o.history[i].UpdatedAt()
			return &t
		}
	}
	return nil
}

// RegisterOffer records who made the most recent offer. Offers are only
// meaningful on offer-mode orders in an offerable state.
func (o *Order) RegisterOffer(from Participant) error {
	if err := from.Validate(); err != nil {
		return err
	}
	if o.mode != ModeOffer {
		return errs.NewValidationError(errs.CodeCannotOffer).
			With("mode", o.mode.String())
	}
	if !o.IsOfferable() {
		return errs.NewValidationError(errs.CodeNotOfferable).
			With("state", o.state.String())
	}

	o.lastOfferFrom = &from
	return nil
}

// AwaitingResponseFrom answers "who must respond next" for a submitted
// offer-mode order: the counterpart of whoever made the last offer.
func (o *Order) AwaitingResponseFrom() (Participant, error) {
	if o.mode != ModeOffer {
		return ParticipantUnknown, errs.NewValidationError(errs.CodeNotOfferable).
			With("mode", o.mode.String())
	}
	if o.state != StateSubmitted {
		return ParticipantUnknown, errs.NewValidationError(errs.CodeOrderNotSubmitted).
			With("state", o.state.String())
	}
	if o.lastOfferFrom == nil {
		return ParticipantUnknown, errs.NewValidationError(errs.CodeNotLastOffer).
			With("order_id", o.id.String())
	}
	return o.lastOfferFrom.Counterpart()
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCode(code Code) error {
	if err := code.Validate(); err != nil {
		return err
	}
	o.code = code
	return nil
}

func (o *Order) setMode(mode Mode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	o.mode = mode
	return nil
}
