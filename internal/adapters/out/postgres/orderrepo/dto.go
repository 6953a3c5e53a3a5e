// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between domain entities and database rows and owning
// the append-only state history table.
package orderrepo

import (
	"time"

	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The human-readable code carries a unique index; the expiration column is
// indexed for the deadline sweeps.
type OrderDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code           string    `gorm:"type:varchar(16);uniqueIndex"`
	Mode           string    `gorm:"type:varchar(8)"`
	State          string    `gorm:"type:varchar(16);index"`
	StateReason    *string   `gorm:"type:varchar(64)"`
	StateUpdatedAt time.Time
	StateExpiresAt *time.Time `gorm:"index"`
	LastOfferFrom  *string    `gorm:"type:varchar(8)"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// StateHistoryDTO is one row of an order's state ledger. Rows are only ever
// inserted, never updated or deleted. Seq is database-assigned and breaks
// timestamp ties in insertion order when the ledger is read back.
type StateHistoryDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq       int64     `gorm:"autoIncrement;uniqueIndex"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	State     string    `gorm:"type:varchar(16)"`
	Reason    *string   `gorm:"type:varchar(64)"`
	UpdatedAt time.Time
}

// TableName specifies the database table name for history entries.
func (StateHistoryDTO) TableName() string {
	return "order_state_histories"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var reason *string
	if aggregate.StateReason() != order.ReasonNone {
		value := aggregate.StateReason().String()
		reason = &value
	}

	var lastOfferFrom *string
	if from := aggregate.LastOfferFrom(); from != nil {
		value := from.String()
		lastOfferFrom = &value
	}

	return OrderDTO{
		ID:             aggregate.ID().Bytes(),
		Code:           aggregate.Code().String(),
		Mode:           aggregate.Mode().String(),
		State:          aggregate.State().String(),
		StateReason:    reason,
		StateUpdatedAt: aggregate.StateUpdatedAt(),
		StateExpiresAt: aggregate.StateExpiresAt(),
		LastOfferFrom:  lastOfferFrom,
	}
}

// historyFromDomain converts history entries to their database representation.
func historyFromDomain(entries []order.HistoryEntry) []StateHistoryDTO {
	dtos := make([]StateHistoryDTO, 0, len(entries))
	for _, entry := range entries {
		var reason *string
		if entry.Reason() != order.ReasonNone {
			value := entry.Reason().String()
			reason = &value
		}

		dtos = append(dtos, StateHistoryDTO{
			ID:        entry.ID().Bytes(),
			OrderID:   entry.OrderID().Bytes(),
			State:     entry.State().String(),
			Reason:    reason,
			UpdatedAt: entry.UpdatedAt(),
		})
	}
	return dtos
}

// toDomain converts database rows back into an order aggregate.
// Reconstructs the complete aggregate, history included, using RestoreOrder.
func toDomain(dto OrderDTO, historyDTOs []StateHistoryDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	code, err := order.CodeFromString(dto.Code)
	if err != nil {
		return nil, err
	}

	mode, err := order.ModeFromString(dto.Mode)
	if err != nil {
		return nil, err
	}

	state, err := order.StateFromString(dto.State)
	if err != nil {
		return nil, err
	}

	reason := order.ReasonNone
	if dto.StateReason != nil {
		reason, err = order.ReasonFromString(*dto.StateReason)
		if err != nil {
			return nil, err
		}
	}

	var lastOfferFrom *order.Participant
	if dto.LastOfferFrom != nil {
		participant, participantErr := order.ParticipantFromString(*dto.LastOfferFrom)
		if participantErr != nil {
			return nil, participantErr
		}
		lastOfferFrom = &participant
	}

	history := make([]order.HistoryEntry, 0, len(historyDTOs))
	for _, historyDTO := range historyDTOs {
		entry, entryErr := historyEntryToDomain(historyDTO)
		if entryErr != nil {
			return nil, entryErr
		}
		history = append(history, entry)
	}

	return order.RestoreOrder(
		id, code, mode, state, reason,
		dto.StateUpdatedAt, dto.StateExpiresAt, lastOfferFrom, history,
	)
}

func historyEntryToDomain(dto StateHistoryDTO) (order.HistoryEntry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return order.HistoryEntry{}, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return order.HistoryEntry{}, err
	}

	state, err := order.StateFromString(dto.State)
	if err != nil {
		return order.HistoryEntry{}, err
	}

	reason := order.ReasonNone
	if dto.Reason != nil {
		reason, err = order.ReasonFromString(*dto.Reason)
		if err != nil {
			return order.HistoryEntry{}, err
		}
	}

	return order.RestoreHistoryEntry(id, orderID, state, reason, dto.UpdatedAt)
}
