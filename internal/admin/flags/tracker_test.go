package flags

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
)

func newStore() *orders.StaticStore {
	paid := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return orders.NewStaticStore([]orders.Order{
		{ID: 1, Status: orders.StatusProcessing, PaidAt: &paid},
		{ID: 2, Status: orders.StatusOnHold},
		{ID: 3, Status: orders.StatusCancelled},
	}, nil)
}

func TestHandleTransitionMarksUnderReview(t *testing.T) {
	t.Parallel()

	store := newStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	changed, err := tracker.HandleTransition(ctx, 1, orders.StatusProcessing, orders.StatusCancelled)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = tracker.HandleTransition(ctx, 2, orders.StatusOnHold, orders.StatusCancelled)
	require.NoError(t, err)
	require.True(t, changed)

	for _, id := range []int64{1, 2} {
		order, err := store.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, order.Flags.UnderReview)
		require.False(t, order.Flags.Blacklisted)
	}
}

func TestHandleTransitionMarksBlacklistedAndExcludesFromReport(t *testing.T) {
	t.Parallel()

	store := newStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	changed, err := tracker.HandleTransition(ctx, 1, orders.StatusCancelled, orders.StatusProcessing)
	require.NoError(t, err)
	require.True(t, changed)

	found, err := store.Find(ctx, orders.Query{
		Statuses:           []orders.Status{orders.StatusProcessing},
		ExcludeBlacklisted: true,
	})
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestHandleTransitionIgnoresOtherTransitions(t *testing.T) {
	t.Parallel()

	store := newStore()
	tracker := NewTracker(store)

	changed, err := tracker.HandleTransition(context.Background(), 1, orders.StatusProcessing, orders.StatusCompleted)
	require.NoError(t, err)
	require.False(t, changed)

	// No rule means no lookup, so unknown orders are not an error either.
	changed, err = tracker.HandleTransition(context.Background(), 404, orders.StatusPending, orders.StatusProcessing)
	require.NoError(t, err)
	require.False(t, changed)

	order, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, orders.Flags{}, order.Flags)
}

func TestHandleTransitionUnknownOrder(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(newStore())
	_, err := tracker.HandleTransition(context.Background(), 404, orders.StatusProcessing, orders.StatusCancelled)
	require.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestAcceptClearsReviewAndNotice(t *testing.T) {
	t.Parallel()

	store := newStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	_, err := tracker.HandleTransition(ctx, 1, orders.StatusProcessing, orders.StatusCancelled)
	require.NoError(t, err)

	order, err := store.Get(ctx, 1)
	require.NoError(t, err)
	notice := NoticeFor(order)
	require.NotNil(t, notice)
	require.Equal(t, int64(1), notice.OrderID)

	require.NoError(t, tracker.Accept(ctx, 1))

	order, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, order.Flags.UnderReview)
	require.Nil(t, NoticeFor(order))

	require.ErrorIs(t, tracker.Accept(ctx, 0), ErrInvalidOrderID)
	require.ErrorIs(t, tracker.Accept(ctx, 99), orders.ErrOrderNotFound)
}

func TestSaveTestOrder(t *testing.T) {
	t.Parallel()

	store := newStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	flags, err := tracker.SaveTestOrder(ctx, 3, TestOrderForm{Checked: true, Saved: true})
	require.NoError(t, err)
	require.True(t, flags.TestOrder)
	require.True(t, flags.TestOrderSaved)
	require.False(t, NeedsConfirmation(flags))

	flags, err = tracker.SaveTestOrder(ctx, 3, TestOrderForm{Saved: true})
	require.NoError(t, err)
	require.False(t, flags.TestOrder)
	require.True(t, flags.TestOrderSaved)

	_, err = tracker.SaveTestOrder(ctx, -1, TestOrderForm{})
	require.ErrorIs(t, err, ErrInvalidOrderID)
}

func TestNeedsConfirmation(t *testing.T) {
	t.Parallel()

	require.True(t, NeedsConfirmation(orders.Flags{}))
	require.True(t, NeedsConfirmation(orders.Flags{TestOrder: true}))
	require.False(t, NeedsConfirmation(orders.Flags{TestOrderSaved: true}))
}
