package orderrepo

import (
	"context"
	"errors"
	"time"

	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/core/domain/model/order"
	"exchange/internal/core/ports"
	"exchange/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
// The connection must be opened with TranslateError enabled so unique
// violations surface as gorm.ErrDuplicatedKey.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order and its initial history entries.
// A code collision is reported as ports.ErrOrderCodeTaken so the creation
// flow can retry with a fresh code.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrOrderCodeTaken
		}
		return err
	}

	if err := r.insertHistory(ctx, aggregate.UncommittedHistory()); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves the order's current state fields and inserts the history
// entries produced since the aggregate was loaded.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("state", "state_reason", "state_updated_at", "state_expires_at", "last_offer_from").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewValidationError(errs.CodeNotFound).
			With("order_id", aggregate.ID().String())
	}

	if err := r.insertHistory(ctx, aggregate.UncommittedHistory()); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID together with its full history, oldest first.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewValidationError(errs.CodeNotFound).
				With("order_id", id.String())
		}
		return nil, err
	}

	history, err := r.loadHistory(ctx, dto.ID)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, history)
}

// GetExpired retrieves orders whose state deadline has passed at the given
// instant.
func (r *GormOrderRepository) GetExpired(ctx context.Context, now time.Time) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("state_expires_at IS NOT NULL AND state_expires_at <= ?", now.UTC()).
		Order("state_expires_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return r.toAggregates(ctx, dtos)
}

// GetDueForReminder retrieves orders expiring within lead of the given
// instant but not yet expired.
func (r *GormOrderRepository) GetDueForReminder(
	ctx context.Context, now time.Time, lead time.Duration,
) ([]*order.Order, error) {
	now = now.UTC()

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("state_expires_at IS NOT NULL AND state_expires_at > ? AND state_expires_at <= ?",
			now, now.Add(lead)).
		Order("state_expires_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return r.toAggregates(ctx, dtos)
}

func (r *GormOrderRepository) toAggregates(ctx context.Context, dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		history, err := r.loadHistory(ctx, dto.ID)
		if err != nil {
			return nil, err
		}

		aggregate, err := toDomain(dto, history)
		if err != nil {
			return nil, err
		}
		orders = append(orders, aggregate)
	}
	return orders, nil
}

func (r *GormOrderRepository) insertHistory(ctx context.Context, entries []order.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	dtos := historyFromDomain(entries)
	return r.db.WithContext(ctx).Create(&dtos).Error
}

func (r *GormOrderRepository) loadHistory(ctx context.Context, orderID uuid.UUID) ([]StateHistoryDTO, error) {
	var history []StateHistoryDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("updated_at, seq").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}
