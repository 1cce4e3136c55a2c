package flags

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
)

// ErrInvalidOrderID is returned when an action names no usable order.
var ErrInvalidOrderID = errors.New("invalid order id")

// Store is the subset of orders.Store the tracker needs.
type Store interface {
	UpdateFlags(ctx context.Context, id int64, fn func(*orders.Flags) error) (orders.Flags, error)
}

type transition struct {
	from orders.Status
	to   orders.Status
}

// transitionRules lists the status changes that mark an order.
var transitionRules = map[transition]func(*orders.Flags){
	{orders.StatusProcessing, orders.StatusCancelled}: markUnderReview,
	{orders.StatusOnHold, orders.StatusCancelled}:     markUnderReview,
	{orders.StatusCancelled, orders.StatusProcessing}: markBlacklisted,
}

func markUnderReview(f *orders.Flags) { f.UnderReview = true }

func markBlacklisted(f *orders.Flags) { f.Blacklisted = true }

// Tracker maintains the per-order flags in response to status transitions and admin actions.
type Tracker struct {
	store Store
}

// NewTracker constructs a Tracker backed by store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// HandleTransition applies the flag rule for a status change. It reports
// whether a rule matched; transitions without a rule are no-ops.
func (t *Tracker) HandleTransition(ctx context.Context, orderID int64, from, to orders.Status) (bool, error) {
	rule, ok := transitionRules[transition{from: from, to: to}]
	if !ok {
		return false, nil
	}
	if orderID <= 0 {
		return false, ErrInvalidOrderID
	}

	flags, err := t.store.UpdateFlags(ctx, orderID, func(f *orders.Flags) error {
		rule(f)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("flags: transition %s->%s for order %d: %w", from, to, orderID, err)
	}

	observability.FromContext(ctx).Info("order flags updated",
		zap.Int64("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Bool("under_review", flags.UnderReview),
		zap.Bool("blacklisted", flags.Blacklisted),
	)
	return true, nil
}

// Accept clears the under-review flag. Callers check authorisation first.
func (t *Tracker) Accept(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return ErrInvalidOrderID
	}
	_, err := t.store.UpdateFlags(ctx, orderID, func(f *orders.Flags) error {
		f.UnderReview = false
		return nil
	})
	if err != nil {
		return fmt.Errorf("flags: accept order %d: %w", orderID, err)
	}
	observability.FromContext(ctx).Info("order review accepted", zap.Int64("order_id", orderID))
	return nil
}

// TestOrderForm is the submitted state of the test-order box.
type TestOrderForm struct {
	// Checked is true when the checkbox was submitted.
	Checked bool
	// Saved is true when the hidden marker field was submitted.
	Saved bool
}

// SaveTestOrder persists the test-order box. An absent checkbox stores false.
func (t *Tracker) SaveTestOrder(ctx context.Context, orderID int64, form TestOrderForm) (orders.Flags, error) {
	if orderID <= 0 {
		return orders.Flags{}, ErrInvalidOrderID
	}
	flags, err := t.store.UpdateFlags(ctx, orderID, func(f *orders.Flags) error {
		f.TestOrder = form.Checked
		if form.Saved {
			f.TestOrderSaved = true
		}
		return nil
	})
	if err != nil {
		return orders.Flags{}, fmt.Errorf("flags: save test order %d: %w", orderID, err)
	}
	return flags, nil
}

// Notice describes the admin banner shown on an order under review.
type Notice struct {
	OrderID int64
}

// NoticeFor returns the review banner for an order, or nil when none applies.
func NoticeFor(order orders.Order) *Notice {
	if !order.Flags.UnderReview {
		return nil
	}
	return &Notice{OrderID: order.ID}
}

// NeedsConfirmation reports whether the edit page should nudge the user to
// confirm the test-order state on load.
func NeedsConfirmation(f orders.Flags) bool {
	return !f.TestOrderSaved
}
