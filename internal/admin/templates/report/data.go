package report

import (
	"context"
	"net/url"
	"strconv"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/navigation"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	adminreport "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/report"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/session"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/helpers"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/weights"
)

// PageData is the payload of the report and review list pages.
type PageData struct {
	Title     string
	Mode      adminreport.Mode
	Action    string
	CSRFToken string
	Query     QueryState
	Filters   Filters
	Table     TableData
	Screen    ScreenOptions
	PDFURL    string
	Error     string
	Flashes   []session.Flash
}

// QueryState echoes the submitted filter values back into the form.
type QueryState struct {
	Status    string
	Preset    string
	StartDate string
	EndDate   string
	Month     string
	RawQuery  string
}

// Filters holds the options of the filter form controls.
type Filters struct {
	Presets  []SelectOption
	Months   []SelectOption
	Statuses []SelectOption
}

// SelectOption is one <option> of a select control.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// ScreenOptions describes the per-page setting form.
type ScreenOptions struct {
	Action string
	Option string
	Value  int
}

// TableData is the rendered report table.
type TableData struct {
	Columns          []Column
	Rows             []RowView
	Totals           map[ColumnKey]string
	ShowTotals       bool
	Expanded         bool
	ToggleAllLabel   string
	ExpandAllURL     string
	Pagination       PaginationView
	SortURL          string
	SortDirection    string
	PaidDateEndpoint string
	EmptyMessage     string
}

// RowView is one order row of the table.
type RowView struct {
	OrderID     string
	OrderURL    string
	Status      string
	StatusClass string
	PaidLabel   string
	Editable    bool
	Expanded    bool
	Figures     map[ColumnKey]string
	Items       []ItemView
}

// ItemView is a drill-down line of a row.
type ItemView struct {
	Name     string
	SKU      string
	Quantity string
	Weight   string
}

// PaginationView drives the pager links.
type PaginationView struct {
	Page       int
	TotalPages int
	ItemsLabel string
	FirstURL   string
	PrevURL    string
	NextURL    string
	LastURL    string
}

// Input bundles what the handler knows about the request.
type Input struct {
	BasePath  string
	Path      string
	Values    url.Values
	Params    adminreport.Params
	Report    adminreport.Report
	CSRFToken string
	Error     string
	Flashes   []session.Flash
}

// BuildPageData assembles the list page view model.
func BuildPageData(ctx context.Context, in Input) PageData {
	titleKey := "report.title"
	screenOption := "items_per_page"
	if in.Params.Mode == adminreport.ModeReview {
		titleKey = "review.title"
		screenOption = "review_per_page"
	}

	rawQuery := in.Values.Encode()
	data := PageData{
		Title:     helpers.T(ctx, titleKey),
		Mode:      in.Params.Mode,
		Action:    in.Path,
		CSRFToken: in.CSRFToken,
		Query: QueryState{
			Status:    in.Params.Status,
			Preset:    in.Params.Preset,
			StartDate: in.Params.StartDate,
			EndDate:   in.Params.EndDate,
			Month:     in.Params.Month,
			RawQuery:  rawQuery,
		},
		Table:   BuildTable(ctx, in),
		Screen:  ScreenOptions{Action: in.Path + "/screen-options", Option: screenOption, Value: in.Params.PageSize},
		Error:   in.Error,
		Flashes: in.Flashes,
	}
	if in.Params.Mode != adminreport.ModeReview {
		data.Filters = buildFilters(ctx, in.Params, in.Report.Months)
		query := helpers.SetRawQuery(rawQuery, adminreport.ParamExport, adminreport.ExportTrigger)
		query = helpers.SetRawQuery(query, adminreport.ParamNonce, in.CSRFToken)
		data.PDFURL = helpers.BuildURL(in.Path, query)
	}
	return data
}

// BuildTable converts a computed report into table rows and totals.
func BuildTable(ctx context.Context, in Input) TableData {
	rep := in.Report
	rawQuery := in.Values.Encode()
	rows := make([]RowView, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		rows = append(rows, toRowView(in.BasePath, row, in.Params.Expanded))
	}

	table := TableData{
		Columns:          Columns(rep.Export),
		Rows:             rows,
		Totals:           totals(rep),
		ShowTotals:       len(rows) > 0,
		Expanded:         in.Params.Expanded,
		ToggleAllLabel:   helpers.T(ctx, ToggleAllLabel(rows)),
		ExpandAllURL:     helpers.BuildURL(in.Path, helpers.SetRawQuery(rawQuery, adminreport.ParamExpanded, "all")),
		Pagination:       buildPagination(ctx, in.Path, rawQuery, rep.Pagination),
		SortDirection:    string(rep.Sort.Direction),
		PaidDateEndpoint: navigation.Join(in.BasePath, "/report/paid-date"),
	}
	if in.Params.Expanded {
		table.ExpandAllURL = helpers.BuildURL(in.Path, helpers.DelRawQuery(rawQuery, adminreport.ParamExpanded))
	}

	next := orders.SortDirectionDesc
	if rep.Sort.Direction != orders.SortDirectionAsc {
		next = orders.SortDirectionAsc
	}
	sortQuery := helpers.SetRawQuery(rawQuery, adminreport.ParamOrderBy, orders.SortKeyPaidDate)
	sortQuery = helpers.SetRawQuery(sortQuery, adminreport.ParamOrder, string(next))
	sortQuery = helpers.DelRawQuery(sortQuery, adminreport.ParamPage)
	table.SortURL = helpers.BuildURL(in.Path, sortQuery)

	if len(rows) == 0 {
		table.EmptyMessage = helpers.T(ctx, "report.empty")
	}
	return table
}

// ToggleAllLabel returns the message key of the header toggle: "Hide All"
// only when every row is expanded.
func ToggleAllLabel(rows []RowView) string {
	if len(rows) == 0 {
		return "action.view_all"
	}
	for _, row := range rows {
		if !row.Expanded {
			return "action.view_all"
		}
	}
	return "action.hide_all"
}

func toRowView(basePath string, row adminreport.Row, expanded bool) RowView {
	id := strconv.FormatInt(row.OrderID, 10)
	view := RowView{
		OrderID:     id,
		OrderURL:    navigation.Join(basePath, "/orders/"+id),
		Status:      string(row.Status),
		StatusClass: "order-status-" + string(row.Status),
		PaidLabel:   row.PaidLabel,
		Editable:    row.PaidDateEditable(),
		Expanded:    expanded,
		Figures:     make(map[ColumnKey]string, len(weights.Metals)*len(weights.Units)),
		Items:       make([]ItemView, 0, len(row.Items)),
	}
	for _, col := range weightColumns {
		view.Figures[col.Key] = row.Figure(col.Metal, col.Unit)
	}
	for _, item := range row.Items {
		view.Items = append(view.Items, ItemView{
			Name:     item.Name,
			SKU:      item.SKU,
			Quantity: strconv.Itoa(item.Quantity),
			Weight:   item.Weight,
		})
	}
	return view
}

func totals(rep adminreport.Report) map[ColumnKey]string {
	out := make(map[ColumnKey]string, len(weightColumns))
	for _, col := range weightColumns {
		out[col.Key] = rep.TotalFigure(col.Metal, col.Unit)
	}
	return out
}

func buildFilters(ctx context.Context, p adminreport.Params, months []orders.YearMonth) Filters {
	presets := make([]SelectOption, 0, len(adminreport.Presets)+1)
	presets = append(presets, SelectOption{Value: "", Label: helpers.T(ctx, "filter.range"), Selected: p.Preset == ""})
	for _, preset := range adminreport.Presets {
		presets = append(presets, SelectOption{
			Value:    preset,
			Label:    helpers.T(ctx, "preset."+preset),
			Selected: p.Preset == preset,
		})
	}

	monthOptions := make([]SelectOption, 0, len(months)+1)
	monthOptions = append(monthOptions, SelectOption{Value: "0", Label: helpers.T(ctx, "filter.all_dates"), Selected: p.Month == "" || p.Month == "0"})
	for _, ym := range months {
		monthOptions = append(monthOptions, SelectOption{
			Value:    ym.Key(),
			Label:    helpers.T(ctx, "filter.month_option", helpers.T(ctx, "month."+strconv.Itoa(int(ym.Month))), ym.Year),
			Selected: p.Month == ym.Key(),
		})
	}

	current := p.Status
	if current == "" {
		current = orders.StatusProcessing.FormValue()
	} else if status, ok := orders.ParseStatus(current); ok {
		current = status.FormValue()
	}
	statuses := []SelectOption{{Value: adminreport.StatusAny, Label: helpers.T(ctx, "filter.status_any"), Selected: current == adminreport.StatusAny}}
	for _, status := range statusOrder {
		statuses = append(statuses, SelectOption{
			Value:    status.FormValue(),
			Label:    helpers.T(ctx, "status."+string(status)),
			Selected: current == status.FormValue(),
		})
	}

	return Filters{Presets: presets, Months: monthOptions, Statuses: statuses}
}

var statusOrder = []orders.Status{
	orders.StatusPending,
	orders.StatusProcessing,
	orders.StatusOnHold,
	orders.StatusCompleted,
	orders.StatusCancelled,
	orders.StatusRefunded,
	orders.StatusFailed,
}

func buildPagination(ctx context.Context, path, rawQuery string, p adminreport.Pagination) PaginationView {
	view := PaginationView{
		Page:       p.Page,
		TotalPages: p.TotalPages,
		ItemsLabel: helpers.T(ctx, "pagination.items", p.TotalItems),
	}
	if p.TotalPages <= 1 {
		return view
	}
	pageURL := func(page int) string {
		return helpers.BuildURL(path, helpers.SetRawQuery(rawQuery, adminreport.ParamPage, strconv.Itoa(page)))
	}
	if p.Page > 1 {
		view.FirstURL = pageURL(1)
		view.PrevURL = pageURL(p.Page - 1)
	}
	if p.Page < p.TotalPages {
		view.NextURL = pageURL(p.Page + 1)
		view.LastURL = pageURL(p.TotalPages)
	}
	return view
}
