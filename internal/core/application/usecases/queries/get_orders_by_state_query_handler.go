package queries

import (
	"context"
	"database/sql"

	"exchange/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrdersByStateQueryHandler lists order rows filtered by state.
type GetOrdersByStateQueryHandler struct {
	db *gorm.DB
}

// NewGetOrdersByStateQueryHandler creates a handler for state-filtered listings.
// Requires a GORM database connection for query execution.
func NewGetOrdersByStateQueryHandler(db *gorm.DB) GetOrdersByStateQueryHandler {
	return GetOrdersByStateQueryHandler{db: db}
}

// Handle lists orders in any of the query's states, sorted by the instant
// they entered their current state, oldest first. History is not loaded.
func (h GetOrdersByStateQueryHandler) Handle(
	ctx context.Context, query GetOrdersByStateQuery,
) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stateNames := make([]string, 0, len(query.States()))
	for _, state := range query.States() {
		stateNames = append(stateNames, state.String())
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			code,
			mode,
			state,
			state_reason,
			state_updated_at,
			state_expires_at
		FROM orders
		WHERE state IN ?
		ORDER BY state_updated_at, id
	`, stateNames).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderResponse, 0)
	for rows.Next() {
		var response OrderResponse
		var id uuid.UUID
		var reason sql.NullString
		var expiresAt sql.NullTime

		err = rows.Scan(
			&id,
			&response.Code,
			&response.Mode,
			&response.State,
			&reason,
			&response.StateUpdatedAt,
			&expiresAt,
		)
		if err != nil {
			return nil, err
		}

		response.ID, err = kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}
		if reason.Valid {
			response.StateReason = reason.String
		}
		if expiresAt.Valid {
			t := expiresAt.Time.UTC()
			response.StateExpiresAt = &t
		}

		orders = append(orders, response)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
