package paiddate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
)

func newEditor(t *testing.T) (*Editor, *orders.StaticStore) {
	t.Helper()
	paid := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := orders.NewStaticStore([]orders.Order{
		{ID: 10, Status: orders.StatusProcessing, PaidAt: &paid},
		{ID: 11, Status: orders.StatusCompleted, PaidAt: &paid},
	}, nil)
	return NewEditor(store, time.UTC), store
}

func TestUpdateRoundTrip(t *testing.T) {
	t.Parallel()

	editor, store := newEditor(t)
	ctx := context.Background()

	result, err := editor.Update(ctx, Request{OrderID: "10", Date: "2024-04-15", Time: "3:04:05 PM"})
	require.NoError(t, err)
	require.Equal(t, int64(10), result.OrderID)
	require.Equal(t, "2024-04-15 15:04:05", result.DateTime)

	order, err := store.Get(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, result.DateTime, order.PaidAt.Format(Layout))
}

func TestUpdateRejectsNonProcessingOrder(t *testing.T) {
	t.Parallel()

	editor, store := newEditor(t)
	ctx := context.Background()

	_, err := editor.Update(ctx, Request{OrderID: "11", Date: "2024-04-15", Time: "10:00:00"})

	var editErr *Error
	require.True(t, errors.As(err, &editErr))
	require.Equal(t, KindPrecondition, editErr.Kind)
	require.Equal(t, orders.StatusCompleted, editErr.Status)
	require.ErrorIs(t, err, ErrStatusLocked)
	require.Contains(t, err.Error(), "completed")

	order, err := store.Get(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, "2024-05-01 10:00:00", order.PaidAt.Format(Layout))
}

func TestUpdateChecksStatusBeforeParsing(t *testing.T) {
	t.Parallel()

	editor, _ := newEditor(t)
	_, err := editor.Update(context.Background(), Request{OrderID: "11", Date: "not a date", Time: ""})

	var editErr *Error
	require.True(t, errors.As(err, &editErr))
	require.Equal(t, KindPrecondition, editErr.Kind)
}

func TestUpdateValidation(t *testing.T) {
	t.Parallel()

	editor, _ := newEditor(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"missing id", Request{Date: "2024-04-15", Time: "10:00"}, ErrInvalidInput},
		{"non numeric id", Request{OrderID: "abc", Date: "2024-04-15", Time: "10:00"}, ErrInvalidInput},
		{"missing date", Request{OrderID: "10", Time: "10:00"}, ErrInvalidInput},
		{"missing time", Request{OrderID: "10", Date: "2024-04-15"}, ErrInvalidInput},
		{"bad date", Request{OrderID: "10", Date: "2024-02-30", Time: "10:00"}, ErrInvalidDateTime},
		{"bad time", Request{OrderID: "10", Date: "2024-02-01", Time: "25:00"}, ErrInvalidDateTime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := editor.Update(ctx, tc.req)
			var editErr *Error
			require.True(t, errors.As(err, &editErr))
			require.Equal(t, KindValidation, editErr.Kind)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateUnknownOrder(t *testing.T) {
	t.Parallel()

	editor, _ := newEditor(t)
	_, err := editor.Update(context.Background(), Request{OrderID: "999", Date: "2024-04-15", Time: "10:00"})

	var editErr *Error
	require.True(t, errors.As(err, &editErr))
	require.Equal(t, KindLookup, editErr.Kind)
	require.ErrorIs(t, err, orders.ErrOrderNotFound)
}

func TestParseAcceptsClockFormats(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	editor := NewEditor(nil, tokyo)

	for _, clock := range []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM"} {
		got, err := editor.Parse("2024-01-02", clock)
		require.NoError(t, err, clock)
		require.Equal(t, 15, got.Hour())
		require.Equal(t, tokyo, got.Location())
	}
}
