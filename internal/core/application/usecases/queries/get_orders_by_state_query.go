package queries

import (
	"errors"

	"exchange/internal/core/domain/model/order"
	"exchange/internal/pkg/errs"
	"exchange/internal/pkg/guard"
)

var ErrGetOrdersByStateQueryIsNotConstructed = errors.New(
	"GetOrdersByStateQuery must be created via NewGetOrdersByStateQuery constructor",
)

// GetOrdersByStateQuery lists orders occupying any of the given states.
// An empty state list is rejected, as is any name outside the closed state
// set; history is not loaded for list reads.
//
// Example:
//
//	query, err := queries.NewGetOrdersByStateQuery([]string{"submitted", "approved"})
//	handler := queries.NewGetOrdersByStateQueryHandler(db)
//	orders, err := handler.Handle(ctx, query)
type GetOrdersByStateQuery struct { //nolint:recvcheck //using for validation
	states []order.State

	guard guard.ConstructorGuard
}

// NewGetOrdersByStateQuery creates a list query from wire-format state names.
// Unknown or empty state names fail with a validation invalid_states_params
// error naming the offending value.
func NewGetOrdersByStateQuery(states []string) (GetOrdersByStateQuery, error) {
	if len(states) == 0 {
		return GetOrdersByStateQuery{}, errs.NewValidationError(errs.CodeInvalidStatesParams).
			With("detail", "at least one state is required")
	}

	parsed := make([]order.State, 0, len(states))
	for _, name := range states {
		state, err := order.StateFromString(name)
		if err != nil {
			return GetOrdersByStateQuery{}, errs.NewValidationErrorWithCause(errs.CodeInvalidStatesParams, err).
				With("state", name)
		}
		parsed = append(parsed, state)
	}

	return GetOrdersByStateQuery{
		states: parsed,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrdersByStateQueryIsNotConstructed if validation fails.
func (q GetOrdersByStateQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersByStateQueryIsNotConstructed)
}

// States returns the states to filter on.
func (q GetOrdersByStateQuery) States() []order.State {
	return q.states
}
