// Package queries contains read-only operations against the order store.
// Queries bypass the aggregate and read projection rows directly; they never
// mutate state and take no locks.
package queries

import (
	"errors"
	"time"

	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves a single order with its full state history.
//
// Example:
//
//	query, err := queries.NewGetOrderQuery(orderID)
//	handler := queries.NewGetOrderQueryHandler(db)
//	orderView, err := handler.Handle(ctx, query)
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one order by its identifier.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderQueryIsNotConstructed if validation fails.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the identifier of the order to fetch.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// OrderResponse is the read model of one order.
type OrderResponse struct {
	ID             kernel.UUID
	Code           string
	Mode           string
	State          string
	StateReason    string
	StateUpdatedAt time.Time
	StateExpiresAt *time.Time
	History        []HistoryEntryResponse
}

// HistoryEntryResponse is one row of an order's state ledger, oldest first.
type HistoryEntryResponse struct {
	State     string
	Reason    string
	UpdatedAt time.Time
}
