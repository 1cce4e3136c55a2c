package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/weights"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
)

const (
	paidLayoutInteractive = "2006-01-02 15:04:05"
	paidLayoutExport      = "2006-01-02"

	// Placeholder is shown in place of zero row figures.
	Placeholder = "-"
)

// Row is one order of the report.
type Row struct {
	OrderID   int64
	Status    orders.Status
	PaidAt    *time.Time
	PaidLabel string
	Weights   weights.Breakdown
	TestOrder bool
	// Included reports whether the row counts towards the totals.
	Included bool
	Items    []ItemLine
}

// ItemLine is a drill-down entry of a row.
type ItemLine struct {
	ProductID int64
	Name      string
	SKU       string
	Quantity  int
	Weight    string
}

// Figure renders a row's weight for the metal and unit, or the placeholder when zero.
func (r Row) Figure(metal weights.Metal, unit weights.Unit) string {
	value := r.Weights.Get(metal, unit)
	if value.IsZero() {
		return Placeholder
	}
	return value.String()
}

// PaidDateEditable reports whether the paid date may be edited inline.
func (r Row) PaidDateEditable() bool {
	return r.Status == orders.StatusProcessing
}

// Pagination describes the current page of the report.
type Pagination struct {
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// Report is the computed result of one report request.
type Report struct {
	Mode       Mode
	Rows       []Row
	Totals     weights.Breakdown
	Pagination Pagination
	Sort       orders.Sort
	Months     []orders.YearMonth
	Export     bool
}

// TotalFigure renders a total with its unit suffix, e.g. "12.5 oz".
func (r Report) TotalFigure(metal weights.Metal, unit weights.Unit) string {
	return r.Totals.Get(metal, unit).String() + " " + unit.Abbrev()
}

// ExportRows returns the rows printed in the PDF: test orders are left out.
func (r Report) ExportRows() []Row {
	out := make([]Row, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.TestOrder {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Included is the totals predicate: non-test orders that are processing or cancelled.
func Included(order orders.Order) bool {
	if order.Flags.TestOrder {
		return false
	}
	return order.Status == orders.StatusProcessing || order.Status == orders.StatusCancelled
}

// Aggregator computes reports from the order store.
type Aggregator struct {
	store   orders.Store
	builder *Builder
	labels  weights.Labels
}

// NewAggregator constructs an Aggregator resolving metal labels with the given table.
func NewAggregator(store orders.Store, builder *Builder, labels weights.Labels) *Aggregator {
	if builder == nil {
		builder = NewBuilder()
	}
	return &Aggregator{store: store, builder: builder, labels: labels}
}

// Generate runs the query for p and aggregates rows and totals.
func (a *Aggregator) Generate(ctx context.Context, p Params) (Report, error) {
	query, err := a.builder.Build(p)
	if err != nil {
		return Report{}, err
	}

	list, err := a.store.Find(ctx, query)
	if err != nil {
		return Report{}, fmt.Errorf("report: find orders: %w", err)
	}

	total := len(list)
	if !p.Export {
		total, err = a.store.Count(ctx, query.Unbounded())
		if err != nil {
			return Report{}, fmt.Errorf("report: count orders: %w", err)
		}
	}

	products, err := a.store.Products(ctx, orders.ProductIDs(list))
	if err != nil {
		return Report{}, fmt.Errorf("report: load products: %w", err)
	}

	layout := paidLayoutInteractive
	if p.Export {
		layout = paidLayoutExport
	}

	result := Report{
		Mode:   p.Mode,
		Rows:   make([]Row, 0, len(list)),
		Totals: make(weights.Breakdown, len(weights.Metals)),
		Sort:   query.Sort,
		Export: p.Export,
	}
	logger := observability.FromContext(ctx)
	for _, order := range list {
		row := a.buildRow(order, products, layout)
		if len(order.Items) > 0 && row.Weights.IsZero() {
			logger.Debug("report: order has no metal weight", zap.Int64("order_id", order.ID))
		}
		if row.Included {
			result.Totals.Merge(row.Weights)
		}
		result.Rows = append(result.Rows, row)
	}
	SortRows(result.Rows, query.Sort)

	result.Pagination = paginate(p, query, total)

	if p.Mode != ModeReview && !p.Export {
		months, err := a.store.PaidMonths(ctx)
		if err != nil {
			// Months only feed the filter dropdown.
			logger.Warn("report: paid months unavailable", zap.Error(err))
		}
		result.Months = months
	}

	return result, nil
}

func (a *Aggregator) buildRow(order orders.Order, products map[int64]orders.Product, layout string) Row {
	row := Row{
		OrderID:   order.ID,
		Status:    order.Status,
		PaidAt:    order.PaidAt,
		Weights:   weights.Extract(order.Items, products, a.labels),
		TestOrder: order.Flags.TestOrder,
		Included:  Included(order),
		Items:     make([]ItemLine, 0, len(order.Items)),
	}
	if order.PaidAt != nil {
		row.PaidLabel = order.PaidAt.In(a.builder.Location()).Format(layout)
	}
	for _, item := range order.Items {
		product := products[item.ProductID]
		name := item.Name
		if name == "" {
			name = product.Name
		}
		row.Items = append(row.Items, ItemLine{
			ProductID: item.ProductID,
			Name:      name,
			SKU:       product.SKU,
			Quantity:  item.Quantity,
			Weight:    product.WeightValue,
		})
	}
	return row
}

func paginate(p Params, query orders.Query, total int) Pagination {
	if p.Export {
		return Pagination{Page: 1, PageSize: total, TotalItems: total, TotalPages: 1}
	}
	size := query.Limit
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, PageSize: size, TotalItems: total, TotalPages: pages}
}

// SortRows orders rows by paid date using epoch seconds. Rows without a paid
// date sort as zero. Ties keep their store order.
func SortRows(rows []Row, s orders.Sort) {
	epoch := func(r Row) int64 {
		if r.PaidAt == nil {
			return 0
		}
		return r.PaidAt.Unix()
	}
	desc := s.Direction != orders.SortDirectionAsc
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return epoch(rows[i]) > epoch(rows[j])
		}
		return epoch(rows[i]) < epoch(rows[j])
	})
}
