package commands

import (
	"context"
	"time"

	"exchange/internal/core/domain/model/order"
	"exchange/internal/core/ports"
)

// FollowUp runs after a transition has committed, with the lock still held.
// Publishing the state-changed event is the typical follow-up. Its error is
// reported to the caller but never rolls the committed transition back.
type FollowUp func(ctx context.Context, o *order.Order) error

// StateChangedFollowUp builds the follow-up that publishes the committed
// state to the event broker.
func StateChangedFollowUp(publisher ports.OrderEventPublisher) FollowUp {
	return func(ctx context.Context, transitioned *order.Order) error {
		return publisher.PublishStateChanged(ctx, ports.OrderStateChangedEvent{
			OrderID:        transitioned.ID().String(),
			Code:           transitioned.Code().String(),
			State:          transitioned.State().String(),
			StateReason:    transitioned.StateReason().String(),
			StateUpdatedAt: transitioned.StateUpdatedAt(),
			StateExpiresAt: transitioned.StateExpiresAt(),
		})
	}
}

// TransitionOrderCommandHandler executes lifecycle transitions. It serializes
// transitions per order with an exclusive lock, re-reads the current state
// inside the lock, applies the action through the aggregate, and persists the
// updated row together with the new history entry in a single transaction.
//
// Example:
//
//	handler := NewTransitionOrderCommandHandler(locker, uowFactory)
//	cmd, _ := commands.NewApproveOrderCommand(orderID)
//	approved, err := handler.Handle(ctx, cmd, commands.StateChangedFollowUp(publisher))
type TransitionOrderCommandHandler struct {
	locker     ports.OrderLocker
	uowFactory OrderUoWFactory
}

// NewTransitionOrderCommandHandler creates a handler for lifecycle transitions.
func NewTransitionOrderCommandHandler(
	locker ports.OrderLocker, uowFactory OrderUoWFactory,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		locker:     locker,
		uowFactory: uowFactory,
	}
}

// Handle applies the command's action to the order and returns the updated
// aggregate. The per-order lock is held from before the state is read until
// the transaction has committed, so concurrent transitions on the same order
// observe each other's results. When followUp is non-nil and fails, the
// committed order is returned together with the follow-up error.
func (h *TransitionOrderCommandHandler) Handle(
	ctx context.Context, cmd TransitionOrderCommand, followUp FollowUp,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock, err := h.locker.Lock(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	defer unlock()

	transitioned, err := h.transition(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if followUp != nil {
		if err = followUp(ctx, transitioned); err != nil {
			return transitioned, err
		}
	}

	return transitioned, nil
}

func (h *TransitionOrderCommandHandler) transition(
	ctx context.Context, cmd TransitionOrderCommand,
) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = aggregate.Apply(cmd.Action(), cmd.Reason(), time.Now().UTC()); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	aggregate.MarkHistoryPersisted()
	return aggregate, nil
}
