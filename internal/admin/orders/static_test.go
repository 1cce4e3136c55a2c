package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func paidAt(value string) *time.Time {
	t, err := time.Parse(time.DateTime, value)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	status, ok := ParseStatus("wc-processing")
	require.True(t, ok)
	require.Equal(t, StatusProcessing, status)

	status, ok = ParseStatus(" On-Hold ")
	require.True(t, ok)
	require.Equal(t, StatusOnHold, status)

	_, ok = ParseStatus("any")
	require.False(t, ok)

	require.Equal(t, "wc-cancelled", StatusCancelled.FormValue())
}

func TestDateRangeContains(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	closed := DateRange{From: from, To: to}
	require.True(t, closed.Contains(from))
	require.True(t, closed.Contains(to))
	require.False(t, closed.Contains(from.Add(-time.Second)))

	open := DateRange{From: from, To: to, ToExclusive: true}
	require.True(t, open.Contains(to.Add(-time.Nanosecond)))
	require.False(t, open.Contains(to))
}

func TestStaticStoreFindFiltersSortsAndPages(t *testing.T) {
	t.Parallel()

	store := NewStaticStore([]Order{
		{ID: 1, Status: StatusProcessing, PaidAt: paidAt("2024-03-01 10:00:00")},
		{ID: 2, Status: StatusProcessing, PaidAt: paidAt("2024-03-03 10:00:00")},
		{ID: 3, Status: StatusProcessing, PaidAt: paidAt("2024-03-02 10:00:00"), Flags: Flags{Blacklisted: true}},
		{ID: 4, Status: StatusCompleted, PaidAt: paidAt("2024-03-04 10:00:00")},
		{ID: 5, Status: StatusProcessing},
	}, nil)
	ctx := context.Background()

	query := Query{
		Statuses:           []Status{StatusProcessing},
		RequirePaid:        true,
		ExcludeBlacklisted: true,
		Sort:               Sort{Key: SortKeyPaidDate, Direction: SortDirectionDesc},
	}

	found, err := store.Find(ctx, query)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 1}, ids(found))

	query.Sort.Direction = SortDirectionAsc
	found, err = store.Find(ctx, query)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, ids(found))

	query.Limit = 1
	query.Offset = 1
	found, err = store.Find(ctx, query)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, ids(found))

	count, err := store.Count(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestStaticStoreDateRangeFilter(t *testing.T) {
	t.Parallel()

	store := NewStaticStore([]Order{
		{ID: 1, Status: StatusProcessing, PaidAt: paidAt("2024-03-01 00:00:00")},
		{ID: 2, Status: StatusProcessing, PaidAt: paidAt("2024-03-31 23:59:59")},
		{ID: 3, Status: StatusProcessing, PaidAt: paidAt("2024-04-01 00:00:00")},
	}, nil)

	found, err := store.Find(context.Background(), Query{
		Paid: &DateRange{
			From:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			To:          time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			ToExclusive: true,
		},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{1, 2}, ids(found))
}

func TestStaticStoreUpdateFlags(t *testing.T) {
	t.Parallel()

	store := NewStaticStore([]Order{{ID: 7, Status: StatusCancelled}}, nil)
	ctx := context.Background()

	flags, err := store.UpdateFlags(ctx, 7, func(f *Flags) error {
		f.UnderReview = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, flags.UnderReview)

	order, err := store.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, order.Flags.UnderReview)

	boom := errors.New("boom")
	_, err = store.UpdateFlags(ctx, 7, func(*Flags) error { return boom })
	require.ErrorIs(t, err, boom)

	_, err = store.UpdateFlags(ctx, 99, func(*Flags) error { return nil })
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestStaticStoreSetPaidAtAndMonths(t *testing.T) {
	t.Parallel()

	store := NewStaticStore([]Order{
		{ID: 1, Status: StatusProcessing, PaidAt: paidAt("2024-01-15 10:00:00")},
		{ID: 2, Status: StatusProcessing, PaidAt: paidAt("2024-03-15 10:00:00")},
		{ID: 3, Status: StatusCompleted, PaidAt: paidAt("2024-05-15 10:00:00")},
	}, nil)
	ctx := context.Background()

	updated, err := store.SetPaidAt(ctx, 1, *paidAt("2023-12-24 08:30:00"))
	require.NoError(t, err)
	require.Equal(t, "2023-12-24 08:30:00", updated.PaidAt.Format(time.DateTime))

	months, err := store.PaidMonths(ctx)
	require.NoError(t, err)
	require.Equal(t, []YearMonth{{Year: 2024, Month: time.March}, {Year: 2023, Month: time.December}}, months)
	require.Equal(t, "202403", months[0].Key())

	_, err = store.SetPaidAt(ctx, 42, time.Now())
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestStaticStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewStaticStore([]Order{{ID: 1, Status: StatusProcessing, Items: []LineItem{{ProductID: 1, Quantity: 1}}}}, nil)
	order, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	order.Items[0].Quantity = 99

	again, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, again.Items[0].Quantity)
}

func ids(list []Order) []int64 {
	out := make([]int64, 0, len(list))
	for _, order := range list {
		out = append(out, order.ID)
	}
	return out
}
