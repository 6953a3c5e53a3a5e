package http

import (
	"time"

	"exchange/internal/core/application/usecases/queries"
	"exchange/internal/core/domain/model/order"
)

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	Mode string `json:"mode"`
}

// TransitionRequest is the optional body of the reason-bearing transition
// endpoints (reject, cancel).
type TransitionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// OrderResponse is the wire representation of one order.
type OrderResponse struct {
	ID             string                 `json:"id"`
	Code           string                 `json:"code"`
	Mode           string                 `json:"mode"`
	State          string                 `json:"state"`
	StateReason    string                 `json:"state_reason,omitempty"`
	StateUpdatedAt time.Time              `json:"state_updated_at"`
	StateExpiresAt *time.Time             `json:"state_expires_at,omitempty"`
	History        []HistoryEntryResponse `json:"history,omitempty"`
}

// HistoryEntryResponse is one row of an order's state ledger.
type HistoryEntryResponse struct {
	State     string    `json:"state"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrorResponse is the error body shared by all endpoints.
type ErrorResponse struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func orderFromAggregate(aggregate *order.Order) OrderResponse {
	history := make([]HistoryEntryResponse, 0, len(aggregate.History()))
	for _, entry := range aggregate.History() {
		history = append(history, HistoryEntryResponse{
			State:     entry.State().String(),
			Reason:    entry.Reason().String(),
			UpdatedAt: entry.UpdatedAt(),
		})
	}

	return OrderResponse{
		ID:             aggregate.ID().String(),
		Code:           aggregate.Code().String(),
		Mode:           aggregate.Mode().String(),
		State:          aggregate.State().String(),
		StateReason:    aggregate.StateReason().String(),
		StateUpdatedAt: aggregate.StateUpdatedAt(),
		StateExpiresAt: aggregate.StateExpiresAt(),
		History:        history,
	}
}

func orderFromQuery(view queries.OrderResponse) OrderResponse {
	history := make([]HistoryEntryResponse, 0, len(view.History))
	for _, entry := range view.History {
		history = append(history, HistoryEntryResponse{
			State:     entry.State,
			Reason:    entry.Reason,
			UpdatedAt: entry.UpdatedAt,
		})
	}

	return OrderResponse{
		ID:             view.ID.String(),
		Code:           view.Code,
		Mode:           view.Mode,
		State:          view.State,
		StateReason:    view.StateReason,
		StateUpdatedAt: view.StateUpdatedAt,
		StateExpiresAt: view.StateExpiresAt,
		History:        history,
	}
}
