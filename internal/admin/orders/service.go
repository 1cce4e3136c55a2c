package orders

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// Store exposes the order and product data the weight report reads and the
// few mutations the admin surface performs.
type Store interface {
	// Find returns the orders matching the query, honouring sort and page bounds.
	Find(ctx context.Context, query Query) ([]Order, error)

	// Count returns the number of orders matching the query, ignoring page bounds.
	Count(ctx context.Context, query Query) (int, error)

	// Get loads a single order including its flags.
	Get(ctx context.Context, id int64) (Order, error)

	// Products returns weight metadata keyed by product ID. Unknown IDs are omitted.
	Products(ctx context.Context, ids []int64) (map[int64]Product, error)

	// UpdateFlags applies fn to the order's flags and persists the result.
	UpdateFlags(ctx context.Context, id int64, fn func(*Flags) error) (Flags, error)

	// SetPaidAt overwrites the order's paid timestamp.
	SetPaidAt(ctx context.Context, id int64, paidAt time.Time) (Order, error)

	// PaidMonths lists the distinct year/months in which processing orders were paid, newest first.
	PaidMonths(ctx context.Context) ([]YearMonth, error)
}

// Status represents the lifecycle state of an order.
type Status string

const (
	// StatusPending indicates the order is awaiting payment.
	StatusPending Status = "pending"
	// StatusProcessing indicates the order is paid and being fulfilled.
	StatusProcessing Status = "processing"
	// StatusOnHold indicates the order is waiting on manual confirmation.
	StatusOnHold Status = "on-hold"
	// StatusCompleted indicates the order was fulfilled.
	StatusCompleted Status = "completed"
	// StatusCancelled indicates the order was cancelled.
	StatusCancelled Status = "cancelled"
	// StatusRefunded indicates the order was refunded.
	StatusRefunded Status = "refunded"
	// StatusFailed indicates payment failed.
	StatusFailed Status = "failed"
)

const statusPrefix = "wc-"

var knownStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusOnHold:     {},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusRefunded:   {},
	StatusFailed:     {},
}

// ParseStatus normalises a raw status value. The storefront prefixes
// statuses with "wc-" in form values; both spellings are accepted.
func ParseStatus(raw string) (Status, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, statusPrefix)
	status := Status(value)
	if _, ok := knownStatuses[status]; !ok {
		return "", false
	}
	return status, true
}

// FormValue returns the prefixed representation used by form controls.
func (s Status) FormValue() string {
	return statusPrefix + string(s)
}

// SortDirection describes the requested sort ordering.
type SortDirection string

const (
	// SortDirectionAsc sorts ascending.
	SortDirectionAsc SortDirection = "asc"
	// SortDirectionDesc sorts descending.
	SortDirectionDesc SortDirection = "desc"
)

// SortKeyPaidDate is the only sortable column of the report.
const SortKeyPaidDate = "paiddate"

var (
	// ErrOrderNotFound is returned when an order does not exist.
	ErrOrderNotFound = errors.New("order not found")
)

// Order is a commerce order with the fields the report consumes.
type Order struct {
	ID     int64
	Status Status
	PaidAt *time.Time
	Items  []LineItem
	Flags  Flags
}

// LineItem is a product line within an order.
type LineItem struct {
	ProductID int64
	Name      string
	Quantity  int
}

// Product carries the weight metadata attached to a catalog product. The
// weight fields are kept as stored so the extractor can decide what is usable.
type Product struct {
	ID          int64
	Name        string
	SKU         string
	MetalType   string
	WeightValue string
	WeightUnit  string
}

// Flags are the per-order markers maintained by the admin surface.
type Flags struct {
	TestOrder      bool
	TestOrderSaved bool
	UnderReview    bool
	Blacklisted    bool
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Key renders the month as YYYYMM, the format of the month filter.
func (m YearMonth) Key() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("200601")
}

// DateRange bounds the paid timestamp. From is always inclusive; To is
// inclusive unless ToExclusive is set.
type DateRange struct {
	From        time.Time
	To          time.Time
	ToExclusive bool
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if t.Before(r.From) {
		return false
	}
	if r.ToExclusive {
		return t.Before(r.To)
	}
	return !t.After(r.To)
}

// Sort describes the ordering of a query.
type Sort struct {
	Key       string
	Direction SortDirection
}

// Query captures filters, ordering and page bounds for listing orders.
type Query struct {
	// Statuses restricts the result to the listed statuses; empty means any.
	Statuses           []Status
	RequirePaid        bool
	ExcludeBlacklisted bool
	UnderReviewOnly    bool
	Paid               *DateRange
	Sort               Sort
	Offset             int
	// Limit bounds the page size; zero means unbounded.
	Limit int
}

// Unbounded returns a copy of the query without page bounds.
func (q Query) Unbounded() Query {
	q.Offset = 0
	q.Limit = 0
	return q
}

// Matches reports whether the order satisfies every filter of the query.
func (q Query) Matches(order Order) bool {
	if len(q.Statuses) > 0 {
		found := false
		for _, status := range q.Statuses {
			if order.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.RequirePaid && order.PaidAt == nil {
		return false
	}
	if q.ExcludeBlacklisted && order.Flags.Blacklisted {
		return false
	}
	if q.UnderReviewOnly && !order.Flags.UnderReview {
		return false
	}
	if q.Paid != nil {
		if order.PaidAt == nil || !q.Paid.Contains(*order.PaidAt) {
			return false
		}
	}
	return true
}

// PaidEpoch returns the paid timestamp in unix seconds, zero when unpaid.
func (o Order) PaidEpoch() int64 {
	if o.PaidAt == nil {
		return 0
	}
	return o.PaidAt.Unix()
}

// SortOrders orders the slice in place by paid timestamp. Orders with equal
// timestamps keep their relative order.
func SortOrders(list []Order, s Sort) {
	desc := s.Direction != SortDirectionAsc
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].PaidEpoch(), list[j].PaidEpoch()
		if desc {
			return a > b
		}
		return a < b
	})
}

// SortByID orders the slice by descending ID.
func SortByID(list []Order) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID > list[j].ID
	})
}

// Page applies offset and limit to an already filtered and sorted slice.
func Page(list []Order, offset, limit int) []Order {
	total := len(list)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return append([]Order(nil), list[offset:end]...)
}

// ProductIDs returns the distinct product IDs referenced by the orders.
func ProductIDs(list []Order) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, order := range list {
		for _, item := range order.Items {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// MonthsOf collects the distinct paid months of processing orders, newest first.
func MonthsOf(list []Order, loc *time.Location) []YearMonth {
	if loc == nil {
		loc = time.UTC
	}
	seen := make(map[YearMonth]struct{})
	months := make([]YearMonth, 0)
	for _, order := range list {
		if order.Status != StatusProcessing || order.PaidAt == nil {
			continue
		}
		paid := order.PaidAt.In(loc)
		key := YearMonth{Year: paid.Year(), Month: paid.Month()}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})
	return months
}
