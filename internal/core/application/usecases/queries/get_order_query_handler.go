package queries

import (
	"context"
	"database/sql"
	"errors"

	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads one order row and its history ledger.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order reads.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle fetches the order and its history, oldest entry first.
// A missing order fails with a validation not_found error.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return OrderResponse{}, err
	}

	response, err := h.fetchOrder(ctx, query.OrderID())
	if err != nil {
		return OrderResponse{}, err
	}

	response.History, err = h.fetchHistory(ctx, query.OrderID())
	if err != nil {
		return OrderResponse{}, err
	}

	return response, nil
}

func (h GetOrderQueryHandler) fetchOrder(ctx context.Context, orderID kernel.UUID) (OrderResponse, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			code,
			mode,
			state,
			state_reason,
			state_updated_at,
			state_expires_at
		FROM orders
		WHERE id = ?
	`, orderID.String()).Row()

	var response OrderResponse
	var id uuid.UUID
	var reason sql.NullString
	var expiresAt sql.NullTime

	err := row.Scan(
		&id,
		&response.Code,
		&response.Mode,
		&response.State,
		&reason,
		&response.StateUpdatedAt,
		&expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderResponse{}, errs.NewValidationError(errs.CodeNotFound).
			With("order_id", orderID.String())
	}
	if err != nil {
		return OrderResponse{}, err
	}

	response.ID, err = kernel.UUIDFromBytes(id[:])
	if err != nil {
		return OrderResponse{}, err
	}
	if reason.Valid {
		response.StateReason = reason.String
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		response.StateExpiresAt = &t
	}

	return response, nil
}

func (h GetOrderQueryHandler) fetchHistory(
	ctx context.Context, orderID kernel.UUID,
) ([]HistoryEntryResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			state,
			reason,
			updated_at
		FROM order_state_histories
		WHERE order_id = ?
		ORDER BY updated_at, seq
	`, orderID.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]HistoryEntryResponse, 0)
	for rows.Next() {
		var entry HistoryEntryResponse
		var reason sql.NullString

		if err = rows.Scan(&entry.State, &reason, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		if reason.Valid {
			entry.Reason = reason.String
		}

		history = append(history, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}
