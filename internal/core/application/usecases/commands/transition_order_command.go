package commands

import (
	"errors"

	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/core/domain/model/order"
	"exchange/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via one of the New*OrderCommand constructors",
)

// TransitionOrderCommand represents a request to move an order along its
// lifecycle. Every lifecycle action shares this command shape; the named
// constructors below fix the action and accept a cancellation reason only
// where the action allows one.
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	action  order.Action
	reason  order.Reason

	guard guard.ConstructorGuard
}

func newTransitionOrderCommand(
	orderID kernel.UUID, action order.Action, reason order.Reason,
) (TransitionOrderCommand, error) {
	transitionCommand := TransitionOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		transitionCommand.setOrderID(orderID),
		transitionCommand.setAction(action),
		transitionCommand.setReason(reason),
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	return transitionCommand, nil
}

// NewAbandonOrderCommand abandons a pending order.
func NewAbandonOrderCommand(orderID kernel.UUID) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionAbandon, order.ReasonNone)
}

// NewSubmitOrderCommand submits a pending order for review.
func NewSubmitOrderCommand(orderID kernel.UUID) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionSubmit, order.ReasonNone)
}

// NewRevertOrderCommand walks an order one step back: approved orders return
// to submitted, submitted orders return to pending.
func NewRevertOrderCommand(orderID kernel.UUID) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionRevert, order.ReasonNone)
}

// NewApproveOrderCommand approves a submitted order.
func NewApproveOrderCommand(orderID kernel.UUID) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionApprove, order.ReasonNone)
}

// NewRejectOrderCommand rejects a submitted order. When reason is
// order.ReasonNone the action's default reason is recorded.
func NewRejectOrderCommand(orderID kernel.UUID, reason order.Reason) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionReject, reason)
}

// NewSellerLapseOrderCommand expires a submitted order the seller never
// answered.
func NewSellerLapseOrderCommand(orderID kernel.UUID) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionSellerLapse, order.ReasonNone)
}

// NewBuyerLapseOrderCommand expires a submitted order the buyer never
// answered.
func NewBuyerLapseOrderCommand(orderID kernel.UUID) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionBuyerLapse, order.ReasonNone)
}

// NewCancelOrderCommand cancels a submitted order for the given reason.
func NewCancelOrderCommand(orderID kernel.UUID, reason order.Reason) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionCancel, reason)
}

// NewFulfillOrderCommand marks an order fulfilled.
func NewFulfillOrderCommand(orderID kernel.UUID) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionFulfill, order.ReasonNone)
}

// NewRefundOrderCommand refunds an approved or fulfilled order.
func NewRefundOrderCommand(orderID kernel.UUID) (TransitionOrderCommand, error) {
	return newTransitionOrderCommand(orderID, order.ActionRefund, order.ReasonNone)
}

// Validate ensures the command was created through a constructor.
// Returns ErrTransitionOrderCommandIsNotConstructed if validation fails.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to transition.
func (c TransitionOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Action returns the lifecycle action to apply.
func (c TransitionOrderCommand) Action() order.Action {
	return c.action
}

// Reason returns the explicit cancellation reason, or order.ReasonNone when
// the action's default applies.
func (c TransitionOrderCommand) Reason() order.Reason {
	return c.reason
}

func (c *TransitionOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *TransitionOrderCommand) setAction(action order.Action) error {
	if err := action.Validate(); err != nil {
		return err
	}

	c.action = action
	return nil
}

func (c *TransitionOrderCommand) setReason(reason order.Reason) error {
	if reason == order.ReasonNone {
		return nil
	}

	parsed, err := order.ReasonFromString(reason.String())
	if err != nil {
		return err
	}

	c.reason = parsed
	return nil
}
