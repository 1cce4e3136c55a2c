package report

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
)

// Mode selects which order population a report covers.
type Mode string

const (
	// ModeStandard lists paid orders for the weight report.
	ModeStandard Mode = "standard"
	// ModeReview lists cancelled orders awaiting review.
	ModeReview Mode = "review"
)

// Date range presets accepted in filter_month.
const (
	PresetCurrentMonth = "current_month"
	PresetLast15Days   = "last_15_days"
	PresetLastMonth    = "last_month"
	PresetLastQuarter  = "last_quarter"
	PresetLastYear     = "last_year"
	PresetCurrentYear  = "current_year"
	PresetCustomRange  = "custom_range"
	PresetCustomMonth  = "custom_month"
)

// Presets lists the range presets in the order the filter offers them.
var Presets = []string{
	PresetCurrentMonth,
	PresetLast15Days,
	PresetLastMonth,
	PresetLastQuarter,
	PresetLastYear,
	PresetCurrentYear,
	PresetCustomRange,
	PresetCustomMonth,
}

// StatusAny disables the status filter of the standard report.
const StatusAny = "any"

// Query parameter names shared by the builder, the handlers and the templates.
const (
	ParamStatus    = "order_status"
	ParamPreset    = "filter_month"
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
	ParamMonth     = "m"
	ParamOrderBy   = "orderby"
	ParamOrder     = "order"
	ParamPage      = "paged"
	ParamExport    = "pdf"
	ParamExpanded  = "expanded"
	ParamNonce     = "ordernonce"

	// ExportTrigger is the value of ParamExport that requests a PDF.
	ExportTrigger = "ganerated"
)

// FilterParams are the parameters whose presence requires a valid nonce.
var FilterParams = []string{ParamStatus, ParamPreset, ParamStartDate, ParamEndDate, ParamMonth, ParamExport}

const (
	dateLayout  = "2006-01-02"
	monthLayout = "200601"

	// DefaultPageSize applies when no screen option is stored.
	DefaultPageSize = 20
	// MaxPageSize bounds the screen option.
	MaxPageSize = 999
)

// ErrInvalidFilter is returned when date filter values cannot be parsed or are inconsistent.
var ErrInvalidFilter = errors.New("invalid date filter")

// Params is the explicit request context of a report: everything the
// builder needs, decoded once from the request.
type Params struct {
	Mode      Mode
	Status    string
	Preset    string
	StartDate string
	EndDate   string
	Month     string
	OrderBy   string
	Order     string
	Page      int
	PageSize  int
	Export    bool
	Expanded  bool
}

// ParamsFromValues decodes report parameters from URL values.
func ParamsFromValues(values url.Values, mode Mode, pageSize int) Params {
	page, err := strconv.Atoi(strings.TrimSpace(values.Get(ParamPage)))
	if err != nil || page < 1 {
		page = 1
	}
	return Params{
		Mode:      mode,
		Status:    strings.TrimSpace(values.Get(ParamStatus)),
		Preset:    strings.TrimSpace(values.Get(ParamPreset)),
		StartDate: strings.TrimSpace(values.Get(ParamStartDate)),
		EndDate:   strings.TrimSpace(values.Get(ParamEndDate)),
		Month:     strings.TrimSpace(values.Get(ParamMonth)),
		OrderBy:   strings.TrimSpace(values.Get(ParamOrderBy)),
		Order:     strings.TrimSpace(values.Get(ParamOrder)),
		Page:      page,
		PageSize:  ClampPageSize(pageSize),
		Export:    values.Get(ParamExport) == ExportTrigger,
		Expanded:  values.Get(ParamExpanded) == "all",
	}
}

// HasFilter reports whether any nonce-protected parameter is present.
func HasFilter(values url.Values) bool {
	for _, key := range FilterParams {
		if _, ok := values[key]; ok {
			return true
		}
	}
	return false
}

// ClampPageSize normalises a page size into [1, MaxPageSize], defaulting when unset.
func ClampPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}

// Sort returns the normalised sort requested by the parameters.
func (p Params) Sort() orders.Sort {
	direction := orders.SortDirectionDesc
	if strings.EqualFold(p.Order, string(orders.SortDirectionAsc)) {
		direction = orders.SortDirectionAsc
	}
	return orders.Sort{Key: orders.SortKeyPaidDate, Direction: direction}
}

// Builder turns report parameters into store queries.
type Builder struct {
	now func() time.Time
	loc *time.Location
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the clock used to evaluate relative presets.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLocation sets the zone in which calendar boundaries are computed.
func WithLocation(loc *time.Location) BuilderOption {
	return func(b *Builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// NewBuilder constructs a Builder evaluating presets in UTC against the wall clock.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Location returns the zone used for calendar boundaries.
func (b *Builder) Location() *time.Location {
	return b.loc
}

// Build produces the paged store query for the parameters. Export requests
// are unbounded so the document covers the whole filtered result.
func (b *Builder) Build(p Params) (orders.Query, error) {
	query := orders.Query{Sort: p.Sort()}

	switch p.Mode {
	case ModeReview:
		query.Statuses = []orders.Status{orders.StatusCancelled}
		query.UnderReviewOnly = true
	default:
		statuses, err := statusFilter(p.Status)
		if err != nil {
			return orders.Query{}, err
		}
		query.Statuses = statuses
		query.ExcludeBlacklisted = true
		query.RequirePaid = true

		paid, err := b.DateRange(p.Preset, p.StartDate, p.EndDate, p.Month)
		if err != nil {
			return orders.Query{}, err
		}
		query.Paid = paid
	}

	if !p.Export {
		size := ClampPageSize(p.PageSize)
		page := p.Page
		if page < 1 {
			page = 1
		}
		query.Limit = size
		query.Offset = (page - 1) * size
	}
	return query, nil
}

func statusFilter(raw string) ([]orders.Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return []orders.Status{orders.StatusProcessing}, nil
	case StatusAny:
		return nil, nil
	}
	status, ok := orders.ParseStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidFilter, raw)
	}
	return []orders.Status{status}, nil
}

// DateRange evaluates a preset. It returns nil when the preset applies no
// filter: unknown presets, and custom presets missing their inputs.
func (b *Builder) DateRange(preset, start, end, month string) (*orders.DateRange, error) {
	now := b.now().In(b.loc)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, b.loc)

	switch preset {
	case PresetCurrentMonth:
		return &orders.DateRange{From: firstOfMonth, To: now}, nil
	case PresetLast15Days:
		return &orders.DateRange{From: now.AddDate(0, 0, -15), To: now}, nil
	case PresetLastMonth:
		from := firstOfMonth.AddDate(0, -1, 0)
		return &orders.DateRange{From: from, To: endOfDay(firstOfMonth.AddDate(0, 0, -1))}, nil
	case PresetLastQuarter:
		return &orders.DateRange{From: now.AddDate(0, -3, 0), To: now}, nil
	case PresetLastYear:
		from := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, b.loc)
		to := time.Date(now.Year()-1, time.December, 31, 0, 0, 0, 0, b.loc)
		return &orders.DateRange{From: from, To: endOfDay(to)}, nil
	case PresetCurrentYear:
		return &orders.DateRange{From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, b.loc), To: now}, nil
	case PresetCustomRange:
		if start == "" || end == "" {
			return nil, nil
		}
		from, err := time.ParseInLocation(dateLayout, start, b.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: start date %q", ErrInvalidFilter, start)
		}
		to, err := time.ParseInLocation(dateLayout, end, b.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: end date %q", ErrInvalidFilter, end)
		}
		if to.Before(from) {
			return nil, fmt.Errorf("%w: end date before start date", ErrInvalidFilter)
		}
		return &orders.DateRange{From: from, To: to.AddDate(0, 0, 1), ToExclusive: true}, nil
	case PresetCustomMonth:
		if month == "" || month == "0" {
			return nil, nil
		}
		from, err := time.ParseInLocation(monthLayout, month, b.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: month %q", ErrInvalidFilter, month)
		}
		return &orders.DateRange{From: from, To: endOfDay(from.AddDate(0, 1, -1))}, nil
	}
	return nil, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay is the last representable instant of t's calendar day.
func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
