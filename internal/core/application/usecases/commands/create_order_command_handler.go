package commands

import (
	"context"
	"errors"
	"time"

	"exchange/internal/core/domain/model/order"
	"exchange/internal/core/ports"
	"exchange/internal/pkg/errs"
)

// CreateOrderCommandHandler handles the business logic for opening orders.
// Generates the order's human-readable code, retrying on collisions with
// already-persisted orders up to order.CodeGenerationAttempts times.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// Requires an OrderUoWFactory for transactional persistence.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the order creation command and returns the created order.
// Each attempt draws a fresh code and runs in its own transaction, so a
// collision rolls back cleanly before the retry.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < order.CodeGenerationAttempts; attempt++ {
		createdOrder, err := h.tryCreate(ctx, cmd, order.NewCode())
		if errors.Is(err, ports.ErrOrderCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return createdOrder, nil
	}

	return nil, errs.NewValidationError(errs.CodeFailedOrderCodeGeneration).
		With("attempts", order.CodeGenerationAttempts)
}

func (h *CreateOrderCommandHandler) tryCreate(
	ctx context.Context, cmd CreateOrderCommand, code order.Code,
) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	newOrder, err := order.NewOrder(cmd.OrderID(), code, cmd.Mode(), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	newOrder.MarkHistoryPersisted()
	return newOrder, nil
}
