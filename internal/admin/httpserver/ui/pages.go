package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"

	custommw "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/flags"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/paiddate"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/pdf"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/rbac"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/report"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/weights"
)

// Screen option scopes and their option names.
const (
	ScopeReport = "report"
	ScopeReview = "review"

	OptionReportPerPage = "items_per_page"
	OptionReviewPerPage = "review_per_page"
)

var screenOptions = map[string]string{
	ScopeReport: OptionReportPerPage,
	ScopeReview: OptionReviewPerPage,
}

var (
	// ErrUnknownScreenOption is returned for a scope/option pair the pages do not own.
	ErrUnknownScreenOption = errors.New("unknown screen option")
	// ErrNoSession is returned when screen options cannot be stored.
	ErrNoSession = errors.New("no session on request")
)

// AdminPages registers the admin menu pages and persists their screen options.
type AdminPages interface {
	RegisterMenu(r chi.Router)
	SaveScreenOption(ctx context.Context, scope, name string, value int) (int, error)
}

// Dependencies collects the services the pages call.
type Dependencies struct {
	Store      orders.Store
	Aggregator *report.Aggregator
	Tracker    *flags.Tracker
	Editor     *paiddate.Editor
	// Renderer is nil when PDF export is disabled.
	Renderer *pdf.Renderer
	Location *time.Location
	Now      func() time.Time
	// DefaultPageSize applies until the user saves a screen option.
	DefaultPageSize int
}

// Pages serves the weight report, the review queue and the order edit page.
type Pages struct {
	store      orders.Store
	aggregator *report.Aggregator
	tracker    *flags.Tracker
	editor     *paiddate.Editor
	renderer   *pdf.Renderer
	loc        *time.Location
	now        func() time.Time
	pageSize   int
}

var _ AdminPages = (*Pages)(nil)

// NewPages wires the page handlers. Store is required; the other services
// default to instances built on it.
func NewPages(deps Dependencies) *Pages {
	if deps.Store == nil {
		panic("ui: order store is required")
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	p := &Pages{
		store:      deps.Store,
		aggregator: deps.Aggregator,
		tracker:    deps.Tracker,
		editor:     deps.Editor,
		renderer:   deps.Renderer,
		loc:        loc,
		now:        now,
		pageSize:   report.ClampPageSize(deps.DefaultPageSize),
	}
	if p.aggregator == nil {
		p.aggregator = report.NewAggregator(deps.Store, report.NewBuilder(report.WithLocation(loc), report.WithClock(now)), weights.DefaultCatalog().Labels("en"))
	}
	if p.tracker == nil {
		p.tracker = flags.NewTracker(deps.Store)
	}
	if p.editor == nil {
		p.editor = paiddate.NewEditor(deps.Store, loc)
	}
	return p
}

// RegisterMenu mounts the admin pages on r, which is expected to sit behind
// the session, auth and CSRF middleware.
func (p *Pages) RegisterMenu(r chi.Router) {
	reportNonce := custommw.RequireQueryNonce(report.ParamNonce, report.FilterParams...)

	r.With(custommw.RequireCapability(rbac.CapReportView), reportNonce).Get("/report", p.Report)
	r.With(custommw.RequireCapability(rbac.CapReportView)).Post("/report/screen-options", p.ScreenOptions(ScopeReport))
	r.With(custommw.RequireCapability(rbac.CapOrdersEdit)).Post("/report/paid-date", p.UpdatePaidDate)

	r.With(custommw.RequireCapability(rbac.CapReviewView)).Get("/review", p.Review)
	r.With(custommw.RequireCapability(rbac.CapReviewView)).Post("/review/screen-options", p.ScreenOptions(ScopeReview))
	r.With(custommw.RequireCapability(rbac.CapOrdersReviewAccept)).Post("/review/accept", p.AcceptReview)

	r.With(custommw.RequireCapability(rbac.CapOrdersEdit)).Get("/orders/{orderID}", p.OrderPage)
	r.With(custommw.RequireCapability(rbac.CapOrdersEdit)).Post("/orders/{orderID}/test-order", p.SaveTestOrder)
}

// SaveScreenOption clamps value into the page size bounds and stores it in
// the session of ctx. It returns the stored value.
func (p *Pages) SaveScreenOption(ctx context.Context, scope, name string, value int) (int, error) {
	expected, ok := screenOptions[scope]
	if !ok || expected != name {
		return 0, fmt.Errorf("%w: %s/%s", ErrUnknownScreenOption, scope, name)
	}
	sess, ok := custommw.SessionFromContext(ctx)
	if !ok || sess == nil {
		return 0, ErrNoSession
	}
	value = clampScreenOption(value)
	sess.SetScreenOption(name, value)
	return value, nil
}

func clampScreenOption(value int) int {
	switch {
	case value < 1:
		return 1
	case value > report.MaxPageSize:
		return report.MaxPageSize
	default:
		return value
	}
}

func (p *Pages) screenPageSize(ctx context.Context, mode report.Mode) int {
	name := OptionReportPerPage
	if mode == report.ModeReview {
		name = OptionReviewPerPage
	}
	if sess, ok := custommw.SessionFromContext(ctx); ok && sess != nil {
		if value, ok := sess.ScreenOption(name); ok {
			return value
		}
	}
	return p.pageSize
}
