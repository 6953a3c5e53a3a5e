package order_test

import (
	"testing"
	"time"

	"exchange/internal/core/domain/model/kernel"
	"exchange/internal/core/domain/model/order"
	"exchange/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newPendingOrder(t *testing.T, mode order.Mode) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), order.NewCode(), mode, baseTime)
	require.NoError(t, err)
	return o
}

// orderInState restores an order whose current (and only historic) state is
// the given one, as if loaded from persistence.
func orderInState(t *testing.T, state order.State, mode order.Mode) *order.Order {
	t.Helper()
	id := kernel.NewUUID()
	reason := order.ReasonNone
	if state == order.StateCanceled {
		reason = order.ReasonAdminCanceled
	}
	entry := order.NewHistoryEntry(id, state, reason, baseTime)
	o, err := order.RestoreOrder(
		id, order.NewCode(), mode,
		state, reason, baseTime, order.ExpiresAt(state, baseTime),
		nil, []order.HistoryEntry{entry},
	)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("starts pending with one history entry", func(t *testing.T) {
		id := kernel.NewUUID()
		code := order.NewCode()

		o, err := order.NewOrder(id, code, order.ModeBuy, baseTime)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, code, o.Code())
		assert.Equal(t, order.ModeBuy, o.Mode())
		assert.Equal(t, order.StatePending, o.State())
		assert.Equal(t, order.ReasonNone, o.StateReason())
		assert.Equal(t, baseTime, o.StateUpdatedAt())

		require.NotNil(t, o.StateExpiresAt())
		assert.Equal(t, baseTime.Add(48*time.Hour), *o.StateExpiresAt())

		history := o.History()
		require.Len(t, history, 1)
		assert.Equal(t, order.StatePending, history[0].State())
		assert.Equal(t, order.ReasonNone, history[0].Reason())
		assert.Equal(t, baseTime, history[0].UpdatedAt())
		assert.True(t, history[0].OrderID().IsEqual(id))
	})

	t.Run("fails with invalid id", func(t *testing.T) {
		var invalidID kernel.UUID
		_, err := order.NewOrder(invalidID, order.NewCode(), order.ModeBuy, baseTime)
		require.Error(t, err)
	})

	t.Run("fails with invalid code", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), order.Code("short"), order.ModeBuy, baseTime)
		require.Error(t, err)
	})

	t.Run("fails with invalid mode", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), order.NewCode(), order.ModeUnknown, baseTime)
		require.Error(t, err)
	})
}

func TestRestoreOrder(t *testing.T) {
	t.Run("fails with empty history", func(t *testing.T) {
		_, err := order.RestoreOrder(
			kernel.NewUUID(), order.NewCode(), order.ModeBuy,
			order.StatePending, order.ReasonNone, baseTime, nil, nil, nil,
		)

		require.Error(t, err)
		assert.Equal(t, errs.CodeInvalidOrder, errs.CodeOf(err))
	})

	t.Run("fails when a history entry belongs to another order", func(t *testing.T) {
		id := kernel.NewUUID()
		foreign := order.NewHistoryEntry(kernel.NewUUID(), order.StatePending, order.ReasonNone, baseTime)

		_, err := order.RestoreOrder(
			id, order.NewCode(), order.ModeBuy,
			order.StatePending, order.ReasonNone, baseTime, nil, nil,
			[]order.HistoryEntry{foreign},
		)

		require.Error(t, err)
	})

	t.Run("fails when reason does not fit the state", func(t *testing.T) {
		id := kernel.NewUUID()
		entry := order.NewHistoryEntry(id, order.StateSubmitted, order.ReasonNone, baseTime)

		_, err := order.RestoreOrder(
			id, order.NewCode(), order.ModeBuy,
			order.StateSubmitted, order.ReasonSellerLapsed, baseTime, nil, nil,
			[]order.HistoryEntry{entry},
		)

		require.Error(t, err)
	})

	t.Run("restored history counts as persisted", func(t *testing.T) {
		o := orderInState(t, order.StateSubmitted, order.ModeBuy)

		assert.Empty(t, o.UncommittedHistory())
		assert.Len(t, o.History(), 1)
	})
}

func TestOrder_Validate(t *testing.T) {
	t.Run("nil order fails", func(t *testing.T) {
		var o *order.Order
		require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	})

	t.Run("zero value fails", func(t *testing.T) {
		require.ErrorIs(t, (&order.Order{}).Validate(), order.ErrOrderIsNotConstructed)
	})
}

func TestOrder_Apply_LegalTransitions(t *testing.T) {
	for action, sources := range legalTransitions() {
		for from, target := range sources {
			t.Run(action.String()+" from "+from.String(), func(t *testing.T) {
				o := orderInState(t, from, order.ModeBuy)
				later := baseTime.Add(time.Hour)

				err := o.Apply(action, order.ReasonNone, later)

				require.NoError(t, err)
				assert.Equal(t, target, o.State())
				assert.Equal(t, later, o.StateUpdatedAt())
				assert.True(t, o.StateUpdatedAt().After(baseTime), "state_updated_at strictly increases")

				history := o.History()
				require.Len(t, history, 2, "exactly one new history entry")
				assert.Equal(t, target, history[1].State())
				assert.Equal(t, later, history[1].UpdatedAt())

				if deadline := order.ExpiresAt(target, later); deadline == nil {
					assert.Nil(t, o.StateExpiresAt())
				} else {
					require.NotNil(t, o.StateExpiresAt())
					assert.Equal(t, *deadline, *o.StateExpiresAt())
				}
			})
		}
	}
}

func TestOrder_Apply_IllegalTransitionLeavesOrderUntouched(t *testing.T) {
	table := legalTransitions()
	for _, action := range order.AllActions() {
		for _, from := range order.AllStates() {
			if _, legal := table[action][from]; legal {
				continue
			}
			t.Run(action.String()+" from "+from.String(), func(t *testing.T) {
				o := orderInState(t, from, order.ModeBuy)
				reasonBefore := o.StateReason()

				err := o.Apply(action, order.ReasonNone, baseTime.Add(time.Hour))

				require.Error(t, err)
				assert.Equal(t, errs.CodeInvalidState, errs.CodeOf(err))
				assert.Equal(t, from, o.State(), "state unchanged")
				assert.Equal(t, reasonBefore, o.StateReason(), "reason unchanged")
				assert.Equal(t, baseTime, o.StateUpdatedAt(), "timestamp unchanged")
				assert.Len(t, o.History(), 1, "no history appended")
			})
		}
	}
}

func TestOrder_Apply_ReasonRules(t *testing.T) {
	t.Run("explicit reason overrides the default", func(t *testing.T) {
		o := orderInState(t, order.StateSubmitted, order.ModeBuy)

		err := o.Reject(order.ReasonSellerRejectedShippingUnavailable, baseTime.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, order.StateCanceled, o.State())
		assert.Equal(t, order.ReasonSellerRejectedShippingUnavailable, o.StateReason())
	})

	t.Run("reason on a non-canceled target is a validation failure without mutation", func(t *testing.T) {
		o := orderInState(t, order.StateSubmitted, order.ModeBuy)

		err := o.Apply(order.ActionApprove, order.ReasonAdminCanceled, baseTime.Add(time.Hour))

		require.Error(t, err)
		var de *errs.DomainError
		require.ErrorAs(t, err, &de)
		assert.Contains(t, de.Context, "reason", "distinguishable from illegal transition")
		assert.Equal(t, order.StateSubmitted, o.State())
		assert.Len(t, o.History(), 1)
	})

	t.Run("unknown reason on cancel is rejected", func(t *testing.T) {
		o := orderInState(t, order.StateSubmitted, order.ModeBuy)

		err := o.Cancel(order.Reason("because"), baseTime.Add(time.Hour))

		require.Error(t, err)
		assert.Equal(t, order.StateSubmitted, o.State())
	})
}

func TestOrder_Lifecycle_Scenarios(t *testing.T) {
	t.Run("pending order submits", func(t *testing.T) {
		o := newPendingOrder(t, order.ModeBuy)

		err := o.Submit(baseTime.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, order.StateSubmitted, o.State())
		assert.Equal(t, order.ReasonNone, o.StateReason())

		history := o.History()
		require.Len(t, history, 2)
		assert.Equal(t, order.StatePending, history[0].State())
		assert.Equal(t, order.StateSubmitted, history[1].State())
	})

	t.Run("seller lapse defaults its reason", func(t *testing.T) {
		o := orderInState(t, order.StateSubmitted, order.ModeBuy)

		err := o.SellerLapse(baseTime.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, order.StateCanceled, o.State())
		assert.Equal(t, order.ReasonSellerLapsed, o.StateReason())
	})

	t.Run("second refund fails with invalid_state", func(t *testing.T) {
		o := orderInState(t, order.StateApproved, order.ModeBuy)

		require.NoError(t, o.Refund(baseTime.Add(time.Hour)))
		assert.Equal(t, order.StateRefunded, o.State())

		err := o.Refund(baseTime.Add(2 * time.Hour))

		require.Error(t, err)
		assert.Equal(t, errs.CodeInvalidState, errs.CodeOf(err))
		assert.Equal(t, order.StateRefunded, o.State())
		assert.Len(t, o.History(), 2)
	})

	t.Run("submit then approve sets the expiration windows", func(t *testing.T) {
		o := newPendingOrder(t, order.ModeBuy)

		submitAt := baseTime.Add(time.Hour)
		require.NoError(t, o.Submit(submitAt))
		require.NotNil(t, o.StateExpiresAt())
		assert.Equal(t, submitAt.Add(72*time.Hour), *o.StateExpiresAt())

		approveAt := submitAt.Add(time.Hour)
		require.NoError(t, o.Approve(approveAt))
		require.NotNil(t, o.StateExpiresAt())
		assert.Equal(t, approveAt.Add(7*24*time.Hour), *o.StateExpiresAt())

		require.NoError(t, o.Fulfill(approveAt.Add(time.Hour)))
		assert.Nil(t, o.StateExpiresAt())
	})
}

func TestOrder_HistoryReplayIsDeterministic(t *testing.T) {
	run := func(o *order.Order) {
		require.NoError(t, o.Submit(baseTime.Add(1*time.Hour)))
		require.NoError(t, o.Revert(baseTime.Add(2*time.Hour)))
		require.NoError(t, o.Submit(baseTime.Add(3*time.Hour)))
		require.NoError(t, o.Approve(baseTime.Add(4*time.Hour)))
		require.NoError(t, o.Refund(baseTime.Add(5*time.Hour)))
	}

	first := newPendingOrder(t, order.ModeBuy)
	second := newPendingOrder(t, order.ModeBuy)
	run(first)
	run(second)

	assert.Equal(t, first.State(), second.State())
	assert.Equal(t, first.StateReason(), second.StateReason())

	firstHistory := first.History()
	secondHistory := second.History()
	require.Equal(t, len(firstHistory), len(secondHistory))
	for i := range firstHistory {
		assert.Equal(t, firstHistory[i].State(), secondHistory[i].State())
		assert.Equal(t, firstHistory[i].Reason(), secondHistory[i].Reason())
	}
}

func TestOrder_LedgerLookups(t *testing.T) {
	o := newPendingOrder(t, order.ModeBuy)

	assert.Nil(t, o.LastSubmittedAt())
	assert.Nil(t, o.LastApprovedAt())

	firstSubmit := baseTime.Add(1 * time.Hour)
	require.NoError(t, o.Submit(firstSubmit))
	require.NoError(t, o.Revert(baseTime.Add(2*time.Hour)))

	secondSubmit := baseTime.Add(3 * time.Hour)
	require.NoError(t, o.Submit(secondSubmit))

	require.NotNil(t, o.LastSubmittedAt())
	assert.Equal(t, secondSubmit, *o.LastSubmittedAt(), "most recent submission wins")

	approveAt := baseTime.Add(4 * time.Hour)
	require.NoError(t, o.Approve(approveAt))
	require.NotNil(t, o.LastApprovedAt())
	assert.Equal(t, approveAt, *o.LastApprovedAt())
}

func TestOrder_DerivedQueries(t *testing.T) {
	t.Run("is offerable", func(t *testing.T) {
		offerable := map[order.State]bool{
			order.StatePending:   true,
			order.StateSubmitted: true,
			order.StateAbandoned: false,
			order.StateApproved:  false,
			order.StateCanceled:  false,
			order.StateFulfilled: false,
			order.StateRefunded:  false,
		}
		for state, want := range offerable {
			o := orderInState(t, state, order.ModeOffer)
			assert.Equal(t, want, o.IsOfferable(), state.String())
		}
	})

	t.Run("can commit needs both delegated predicates", func(t *testing.T) {
		o := newPendingOrder(t, order.ModeBuy)

		assert.True(t, o.CanCommit(true, true))
		assert.False(t, o.CanCommit(true, false))
		assert.False(t, o.CanCommit(false, true))
		assert.False(t, o.CanCommit(false, false))
	})
}

func TestOrder_Offers(t *testing.T) {
	t.Run("register and await response", func(t *testing.T) {
		o := newPendingOrder(t, order.ModeOffer)

		require.NoError(t, o.RegisterOffer(order.ParticipantBuyer))
		require.NoError(t, o.Submit(baseTime.Add(time.Hour)))

		from, err := o.AwaitingResponseFrom()

		require.NoError(t, err)
		assert.Equal(t, order.ParticipantSeller, from)
	})

	t.Run("buy-mode orders cannot take offers", func(t *testing.T) {
		o := newPendingOrder(t, order.ModeBuy)

		err := o.RegisterOffer(order.ParticipantBuyer)

		require.Error(t, err)
		assert.Equal(t, errs.CodeCannotOffer, errs.CodeOf(err))
	})

	t.Run("offers rejected once no longer offerable", func(t *testing.T) {
		o := orderInState(t, order.StateCanceled, order.ModeOffer)

		err := o.RegisterOffer(order.ParticipantBuyer)

		require.Error(t, err)
		assert.Equal(t, errs.CodeNotOfferable, errs.CodeOf(err))
	})

	t.Run("awaiting response requires offer mode", func(t *testing.T) {
		o := orderInState(t, order.StateSubmitted, order.ModeBuy)

		_, err := o.AwaitingResponseFrom()

		require.Error(t, err)
		assert.Equal(t, errs.CodeNotOfferable, errs.CodeOf(err))
	})

	t.Run("awaiting response requires submitted state", func(t *testing.T) {
		o := newPendingOrder(t, order.ModeOffer)
		require.NoError(t, o.RegisterOffer(order.ParticipantBuyer))

		_, err := o.AwaitingResponseFrom()

		require.Error(t, err)
		assert.Equal(t, errs.CodeOrderNotSubmitted, errs.CodeOf(err))
	})

	t.Run("awaiting response requires a recorded offer", func(t *testing.T) {
		o := orderInState(t, order.StateSubmitted, order.ModeOffer)

		_, err := o.AwaitingResponseFrom()

		require.Error(t, err)
		assert.Equal(t, errs.CodeNotLastOffer, errs.CodeOf(err))
	})
}

func TestOrder_UncommittedHistory(t *testing.T) {
	o := newPendingOrder(t, order.ModeBuy)
	require.Len(t, o.UncommittedHistory(), 1, "creation entry awaits persistence")

	o.MarkHistoryPersisted()
	assert.Empty(t, o.UncommittedHistory())

	require.NoError(t, o.Submit(baseTime.Add(time.Hour)))
	pending := o.UncommittedHistory()
	require.Len(t, pending, 1)
	assert.Equal(t, order.StateSubmitted, pending[0].State())

	o.MarkHistoryPersisted()
	assert.Empty(t, o.UncommittedHistory())
	assert.Len(t, o.History(), 2)
}

func TestCode(t *testing.T) {
	t.Run("generated codes are fixed-width numeric", func(t *testing.T) {
		for range 100 {
			code := order.NewCode()
			require.NoError(t, code.Validate())
			assert.Len(t, code.String(), order.CodeLength)
		}
	})

	t.Run("rejects wrong width", func(t *testing.T) {
		require.Error(t, order.Code("123").Validate())
	})

	t.Run("rejects non-numeric", func(t *testing.T) {
		require.Error(t, order.Code("12345abcde").Validate())
	})

	t.Run("parses persisted codes", func(t *testing.T) {
		_, err := order.CodeFromString("0042137fla")
		require.Error(t, err, "letters rejected")

		code, err := order.CodeFromString("0000042137")
		require.NoError(t, err)
		assert.Equal(t, "0000042137", code.String())
	})
}
