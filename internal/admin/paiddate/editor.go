package paiddate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
)

// Layout is the canonical representation of an edited paid timestamp.
const Layout = "2006-01-02 15:04:05"

const dateLayout = "2006-01-02"

var timeLayouts = []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM", "3:04:05 pm", "3:04 pm"}

// Kind classifies editor failures for the HTTP layer.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindPrecondition Kind = "state_precondition"
	KindLookup       Kind = "lookup"
)

var (
	// ErrInvalidInput is returned when a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrInvalidDateTime is returned when the date or time cannot be parsed.
	ErrInvalidDateTime = errors.New("invalid date or time format")
	// ErrStatusLocked is returned when the order is not processing.
	ErrStatusLocked = errors.New("order status does not allow paid date edits")
)

// Error describes why an update was rejected.
type Error struct {
	Kind Kind
	// Status is the order's current status for precondition failures.
	Status orders.Status
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindPrecondition {
		return fmt.Sprintf("paiddate: %v (status %s)", e.Err, e.Status)
	}
	return "paiddate: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Request carries the raw submitted values.
type Request struct {
	OrderID string `validate:"required,numeric"`
	Date    string `validate:"required"`
	Time    string `validate:"required"`
}

// Result is returned on success.
type Result struct {
	OrderID  int64
	DateTime string
}

// Store is the subset of orders.Store the editor needs.
type Store interface {
	Get(ctx context.Context, id int64) (orders.Order, error)
	SetPaidAt(ctx context.Context, id int64, paidAt time.Time) (orders.Order, error)
}

// Editor updates the paid timestamp of processing orders.
type Editor struct {
	store    Store
	loc      *time.Location
	validate *validator.Validate
}

// NewEditor constructs an Editor interpreting submitted values in loc.
func NewEditor(store Store, loc *time.Location) *Editor {
	if loc == nil {
		loc = time.UTC
	}
	return &Editor{store: store, loc: loc, validate: validator.New()}
}

// Update checks the order state, parses the submitted timestamp and persists it.
// The status check runs before the timestamp is parsed.
func (e *Editor) Update(ctx context.Context, req Request) (Result, error) {
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)

	if err := e.validate.StructPartialCtx(ctx, req, "OrderID"); err != nil {
		return Result{}, &Error{Kind: KindValidation, Err: ErrInvalidInput}
	}
	id, err := strconv.ParseInt(req.OrderID, 10, 64)
	if err != nil || id <= 0 {
		return Result{}, &Error{Kind: KindValidation, Err: ErrInvalidInput}
	}

	order, err := e.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			return Result{}, &Error{Kind: KindLookup, Err: err}
		}
		return Result{}, fmt.Errorf("paiddate: load order %d: %w", id, err)
	}
	if order.Status != orders.StatusProcessing {
		return Result{}, &Error{Kind: KindPrecondition, Status: order.Status, Err: ErrStatusLocked}
	}

	if err := e.validate.StructCtx(ctx, req); err != nil {
		return Result{}, &Error{Kind: KindValidation, Err: ErrInvalidInput}
	}
	paidAt, err := e.Parse(req.Date, req.Time)
	if err != nil {
		return Result{}, &Error{Kind: KindValidation, Err: ErrInvalidDateTime}
	}

	updated, err := e.store.SetPaidAt(ctx, id, paidAt)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			return Result{}, &Error{Kind: KindLookup, Err: err}
		}
		return Result{}, fmt.Errorf("paiddate: update order %d: %w", id, err)
	}

	formatted := paidAt.Format(Layout)
	if updated.PaidAt != nil {
		formatted = updated.PaidAt.In(e.loc).Format(Layout)
	}
	observability.FromContext(ctx).Info("paid date updated",
		zap.Int64("order_id", id),
		zap.String("paid_at", formatted),
	)
	return Result{OrderID: id, DateTime: formatted}, nil
}

// Parse combines a YYYY-MM-DD date and a clock time in the editor's zone.
func (e *Editor) Parse(date, clock string) (time.Time, error) {
	if _, err := time.ParseInLocation(dateLayout, date, e.loc); err != nil {
		return time.Time{}, err
	}
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(dateLayout+" "+layout, date+" "+clock, e.loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
