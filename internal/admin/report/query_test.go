package report

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
)

func fixedBuilder(now time.Time) *Builder {
	return NewBuilder(WithClock(func() time.Time { return now }), WithLocation(time.UTC))
}

func TestBuildStandardDefaults(t *testing.T) {
	t.Parallel()

	b := fixedBuilder(time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC))
	query, err := b.Build(Params{Mode: ModeStandard, Page: 3, PageSize: 10})
	require.NoError(t, err)

	require.Equal(t, []orders.Status{orders.StatusProcessing}, query.Statuses)
	require.True(t, query.RequirePaid)
	require.True(t, query.ExcludeBlacklisted)
	require.False(t, query.UnderReviewOnly)
	require.Nil(t, query.Paid)
	require.Equal(t, orders.Sort{Key: orders.SortKeyPaidDate, Direction: orders.SortDirectionDesc}, query.Sort)
	require.Equal(t, 10, query.Limit)
	require.Equal(t, 20, query.Offset)
}

func TestBuildStatusSelection(t *testing.T) {
	t.Parallel()

	b := NewBuilder()

	query, err := b.Build(Params{Mode: ModeStandard, Status: "any"})
	require.NoError(t, err)
	require.Empty(t, query.Statuses)

	query, err = b.Build(Params{Mode: ModeStandard, Status: "wc-completed"})
	require.NoError(t, err)
	require.Equal(t, []orders.Status{orders.StatusCompleted}, query.Statuses)

	_, err = b.Build(Params{Mode: ModeStandard, Status: "wc-shipped"})
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestBuildReviewModeIgnoresFilters(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	query, err := b.Build(Params{
		Mode:      ModeReview,
		Status:    "wc-completed",
		Preset:    PresetCustomRange,
		StartDate: "garbage",
		EndDate:   "garbage",
	})
	require.NoError(t, err)
	require.Equal(t, []orders.Status{orders.StatusCancelled}, query.Statuses)
	require.True(t, query.UnderReviewOnly)
	require.False(t, query.ExcludeBlacklisted)
	require.False(t, query.RequirePaid)
	require.Nil(t, query.Paid)
}

func TestBuildExportIsUnbounded(t *testing.T) {
	t.Parallel()

	query, err := NewBuilder().Build(Params{Mode: ModeStandard, Page: 4, PageSize: 5, Export: true})
	require.NoError(t, err)
	require.Zero(t, query.Limit)
	require.Zero(t, query.Offset)
}

func TestDateRangePresets(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 20, 15, 30, 0, 0, time.UTC)
	b := fixedBuilder(now)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	endOf := func(y int, m time.Month, d int) time.Time { return day(y, m, d+1).Add(-time.Nanosecond) }

	cases := []struct {
		preset string
		from   time.Time
		to     time.Time
	}{
		{PresetCurrentMonth, day(2024, 5, 1), now},
		{PresetLast15Days, now.AddDate(0, 0, -15), now},
		{PresetLastMonth, day(2024, 4, 1), endOf(2024, 4, 30)},
		{PresetLastQuarter, now.AddDate(0, -3, 0), now},
		{PresetLastYear, day(2023, 1, 1), endOf(2023, 12, 31)},
		{PresetCurrentYear, day(2024, 1, 1), now},
	}
	for _, tc := range cases {
		t.Run(tc.preset, func(t *testing.T) {
			got, err := b.DateRange(tc.preset, "", "", "")
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, tc.from, got.From)
			require.Equal(t, tc.to, got.To)
			require.False(t, got.ToExclusive)
		})
	}
}

func TestRelativePresetsStartAtCurrentTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 20, 15, 30, 0, 0, time.UTC)
	b := fixedBuilder(now)

	last15, err := b.DateRange(PresetLast15Days, "", "", "")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 5, 15, 30, 0, 0, time.UTC), last15.From)
	require.False(t, last15.Contains(time.Date(2024, 5, 5, 14, 30, 0, 0, time.UTC)))
	require.True(t, last15.Contains(time.Date(2024, 5, 5, 15, 30, 0, 0, time.UTC)))

	quarter, err := b.DateRange(PresetLastQuarter, "", "", "")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 20, 15, 30, 0, 0, time.UTC), quarter.From)
	require.False(t, quarter.Contains(time.Date(2024, 2, 20, 14, 30, 0, 0, time.UTC)))
}

func TestLastMonthIncludesFinalDay(t *testing.T) {
	t.Parallel()

	b := fixedBuilder(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	got, err := b.DateRange(PresetLastMonth, "", "", "")
	require.NoError(t, err)

	require.True(t, got.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, got.Contains(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)))
	require.False(t, got.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.False(t, got.Contains(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)))
}

func TestCustomRangeUpperBoundExclusive(t *testing.T) {
	t.Parallel()

	got, err := NewBuilder().DateRange(PresetCustomRange, "2024-03-01", "2024-03-31", "")
	require.NoError(t, err)
	require.True(t, got.ToExclusive)
	require.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), got.To)

	require.True(t, got.Contains(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	require.False(t, got.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCustomRangeRequiresBothDates(t *testing.T) {
	t.Parallel()

	got, err := NewBuilder().DateRange(PresetCustomRange, "2024-03-01", "", "")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCustomRangeRejectsBadInput(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	_, err := b.DateRange(PresetCustomRange, "2024-13-01", "2024-03-31", "")
	require.True(t, errors.Is(err, ErrInvalidFilter))

	_, err = b.DateRange(PresetCustomRange, "2024-03-10", "2024-03-01", "")
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestCustomMonth(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	got, err := b.DateRange(PresetCustomMonth, "", "", "202402")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), got.From)
	require.True(t, got.Contains(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)))
	require.False(t, got.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	got, err = b.DateRange(PresetCustomMonth, "", "", "0")
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = b.DateRange(PresetCustomMonth, "", "", "2024-02")
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestUnknownPresetAppliesNoFilter(t *testing.T) {
	t.Parallel()

	got, err := NewBuilder().DateRange("next_decade", "", "", "")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPresetsUseConfiguredLocation(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	// 2024-05-31 20:00 UTC is already June 1st in Tokyo.
	now := time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC)
	b := NewBuilder(WithClock(func() time.Time { return now }), WithLocation(tokyo))

	got, err := b.DateRange(PresetCurrentMonth, "", "", "")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, tokyo), got.From)
}

func TestParamsFromValues(t *testing.T) {
	t.Parallel()

	values := url.Values{
		ParamStatus:  {"wc-processing"},
		ParamPreset:  {PresetCustomRange},
		ParamOrder:   {"ASC"},
		ParamPage:    {"-2"},
		ParamExport:  {ExportTrigger},
		ParamOrderBy: {"total"},
	}
	p := ParamsFromValues(values, ModeStandard, 5000)

	require.Equal(t, 1, p.Page)
	require.Equal(t, MaxPageSize, p.PageSize)
	require.True(t, p.Export)
	require.Equal(t, orders.Sort{Key: orders.SortKeyPaidDate, Direction: orders.SortDirectionAsc}, p.Sort())
	require.True(t, HasFilter(values))
	require.False(t, HasFilter(url.Values{ParamPage: {"2"}, ParamOrder: {"asc"}}))
	require.Equal(t, DefaultPageSize, ClampPageSize(0))
}
