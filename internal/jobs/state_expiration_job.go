package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"exchange/internal/core/application/usecases/commands"
	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/core/domain/model/order"
	"exchange/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// expiredOrdersReader is the read side the expiration sweep needs.
type expiredOrdersReader interface {
	GetExpired(ctx context.Context, now time.Time) ([]*order.Order, error)
}

// StateExpirationJob escalates orders whose state deadline has passed.
// Runs every minute: expired pending orders are abandoned, expired submitted
// orders are lapsed on the seller. Overdue approved orders are only reported;
// fulfillment delays need a human decision, not an automatic cancellation.
type StateExpirationJob struct {
	reader   expiredOrdersReader
	handler  commands.TransitionOrderCommandHandler
	followUp commands.FollowUp
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewStateExpirationJob creates the deadline escalation job.
// The followUp runs after each committed escalation, typically publishing
// the state-changed event; it may be nil.
func NewStateExpirationJob(
	reader expiredOrdersReader,
	handler commands.TransitionOrderCommandHandler,
	followUp commands.FollowUp,
	logger *slog.Logger,
) *StateExpirationJob {
	return &StateExpirationJob{
		reader:   reader,
		handler:  handler,
		followUp: followUp,
		cron:     cron.New(),
		logger:   logger.With("component", "state_expiration_job"),
	}
}

// Start begins the expiration sweep, running every minute.
func (j *StateExpirationJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", func() {
		j.sweep(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "State expiration job started (running every minute)")
	return nil
}

// Stop stops the expiration sweep.
func (j *StateExpirationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "State expiration job stopped")
}

func (j *StateExpirationJob) sweep(ctx context.Context) {
	expired, err := j.reader.GetExpired(ctx, time.Now().UTC())
	if err != nil {
		j.logger.ErrorContext(ctx, "Expired order sweep failed", "error", err)
		return
	}

	for _, overdue := range expired {
		j.escalate(ctx, overdue)
	}
}

func (j *StateExpirationJob) escalate(ctx context.Context, overdue *order.Order) {
	var cmd commands.TransitionOrderCommand
	var err error

	switch overdue.State() {
	case order.StatePending:
		cmd, err = commands.NewAbandonOrderCommand(overdue.ID())
	case order.StateSubmitted:
		cmd, err = commands.NewSellerLapseOrderCommand(overdue.ID())
	case order.StateApproved:
		j.logger.WarnContext(ctx, "Approved order past its fulfillment deadline",
			"order_id", overdue.ID().String(),
			"expires_at", overdue.StateExpiresAt())
		return
	default:
		// the deadline columns only ever carry time-bounded states; anything
		// else means the row changed between the sweep query and now
		return
	}

	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to build escalation command",
			"order_id", overdue.ID().String(), "error", err)
		return
	}

	if err = j.handle(ctx, cmd, overdue.ID()); err != nil {
		// a concurrent user transition between the sweep query and the lock
		// makes the escalation illegal; that is expected, not a failure
		var domainErr *errs.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == errs.CodeInvalidState {
			return
		}

		j.logger.ErrorContext(ctx, "Failed to escalate expired order",
			"order_id", overdue.ID().String(),
			"state", overdue.State().String(),
			"error", err)
	}
}

func (j *StateExpirationJob) handle(
	ctx context.Context, cmd commands.TransitionOrderCommand, orderID kernel.UUID,
) error {
	transitioned, err := j.handler.Handle(ctx, cmd, j.followUp)
	if err != nil && transitioned != nil {
		// committed but the follow-up publish failed
		j.logger.WarnContext(ctx, "Escalation committed but event publish failed",
			"order_id", orderID.String(), "error", err)
		return nil
	}
	return err
}
