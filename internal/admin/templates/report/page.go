package report

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	adminreport "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/report"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/helpers"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/partials"
)

// Index renders the full list page.
func Index(data PageData) templ.Component {
	return partials.Page(data.Title, data.Flashes, Body(data))
}

// Body renders the list page without the document shell.
func Body(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		m.Open("div", "class", "weight-report", "data-mode", string(data.Mode)).
			Component(screenOptionsForm(data)).
			Component(noticeBox(data.Error))
		if data.Mode != adminreport.ModeReview {
			m.Component(filterForm(data))
			m.Element("a", helpers.T(ctx, "report.pdf"), "href", data.PDFURL, "class", "button generate-pdf")
		}
		m.Component(pager(data.Table.Pagination)).
			Component(Table(data.Table)).
			Component(pager(data.Table.Pagination)).
			Close("div")
		return m.Err()
	})
}

func noticeBox(message string) templ.Component {
	if message == "" {
		return templ.NopComponent
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return helpers.NewMarkup(ctx, w).
			Open("div", "class", "notice notice-error", "role", "alert").
			Element("p", message).
			Close("div").
			Err()
	})
}

func screenOptionsForm(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return helpers.NewMarkup(ctx, w).
			Open("form", "method", "post", "action", data.Screen.Action, "class", "screen-options").
			Element("h5", helpers.T(ctx, "screen.title")).
			Open("input", "type", "hidden", "name", middleware.CSRFFormField, "value", data.CSRFToken).
			Open("input", "type", "hidden", "name", "option", "value", data.Screen.Option).
			Element("label", helpers.T(ctx, "screen.per_page"), "for", "screen-per-page").
			Open("input",
				"type", "number",
				"id", "screen-per-page",
				"name", "value",
				"min", "1",
				"max", strconv.Itoa(adminreport.MaxPageSize),
				"value", strconv.Itoa(data.Screen.Value),
			).
			Element("button", helpers.T(ctx, "action.apply"), "type", "submit", "class", "button").
			Close("form").
			Err()
	})
}

func filterForm(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		custom := data.Query.Preset == adminreport.PresetCustomRange
		month := data.Query.Preset == adminreport.PresetCustomMonth
		m := helpers.NewMarkup(ctx, w)
		m.Open("form", "method", "get", "action", data.Action, "class", "report-filters").
			Open("input", "type", "hidden", "name", adminreport.ParamNonce, "value", data.CSRFToken).
			Component(selectControl(adminreport.ParamPreset, "filter-range", data.Filters.Presets)).
			Open("span", "class", "custom-range", "hidden?", helpers.Flag(!custom)).
			Open("input",
				"type", "date",
				"name", adminreport.ParamStartDate,
				"value", data.Query.StartDate,
				"aria-label", helpers.T(ctx, "filter.start"),
			).
			Open("input",
				"type", "date",
				"name", adminreport.ParamEndDate,
				"value", data.Query.EndDate,
				"aria-label", helpers.T(ctx, "filter.end"),
			).
			Close("span").
			Open("span", "class", "custom-month", "hidden?", helpers.Flag(!month)).
			Component(selectControl(adminreport.ParamMonth, "filter-month", data.Filters.Months)).
			Close("span").
			Component(selectControl(adminreport.ParamStatus, "filter-status", data.Filters.Statuses)).
			Element("button", helpers.T(ctx, "action.filter"), "type", "submit", "class", "button").
			Close("form")
		return m.Err()
	})
}

func selectControl(name, id string, options []SelectOption) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		m.Open("select", "name", name, "id", id)
		for _, opt := range options {
			m.Element("option", opt.Label, "value", opt.Value, "selected?", helpers.Flag(opt.Selected))
		}
		m.Close("select")
		return m.Err()
	})
}

func pager(p PaginationView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		m.Open("div", "class", "tablenav-pages").
			Element("span", p.ItemsLabel, "class", "displaying-num")
		if p.TotalPages > 1 {
			m.Component(pageLink(p.FirstURL, "«", "pagination.first")).
				Component(pageLink(p.PrevURL, "‹", "pagination.prev")).
				Element("span", helpers.T(ctx, "pagination.page", p.Page, p.TotalPages), "class", "paging-input").
				Component(pageLink(p.NextURL, "›", "pagination.next")).
				Component(pageLink(p.LastURL, "»", "pagination.last"))
		}
		m.Close("div")
		return m.Err()
	})
}

func pageLink(href, glyph, labelKey string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		if href == "" {
			m.Element("span", glyph, "class", "tablenav-pages-navspan button disabled", "aria-hidden", "true")
		} else {
			m.Element("a", glyph, "href", href, "class", "button "+strings.ReplaceAll(labelKey, ".", "-"), "aria-label", helpers.T(ctx, labelKey))
		}
		return m.Err()
	})
}

// Table renders the report rows, their drill-downs and the totals row.
func Table(t TableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		m.Open("table",
			"class", "wp-list-table widefat striped weight-report-table",
			"data-paid-date-endpoint", t.PaidDateEndpoint,
		).
			Open("thead").Open("tr")
		for _, col := range t.Columns {
			m.Open("th", "scope", "col", "class", "column-"+string(col.Key))
			switch {
			case col.Sortable:
				m.Open("a", "href", t.SortURL, "class", "sort-"+t.SortDirection).
					Text(helpers.T(ctx, col.Label)).
					Close("a")
			case col.Key == ColProduct:
				m.Text(helpers.T(ctx, col.Label)+" ").
					Element("a", t.ToggleAllLabel,
						"href", t.ExpandAllURL,
						"class", "toggle-all-products",
						"data-label-view", helpers.T(ctx, "action.view_all"),
						"data-label-hide", helpers.T(ctx, "action.hide_all"),
					)
			default:
				m.Text(helpers.T(ctx, col.Label))
			}
			m.Close("th")
		}
		m.Close("tr").Close("thead").Open("tbody")

		if len(t.Rows) == 0 {
			m.Open("tr", "class", "no-items").
				Element("td", t.EmptyMessage, "colspan", strconv.Itoa(len(t.Columns))).
				Close("tr")
		}
		for _, row := range t.Rows {
			m.Open("tr", "class", row.StatusClass, "data-order-id", row.OrderID)
			for _, col := range t.Columns {
				m.Open("td", "class", "column-"+string(col.Key)).
					Component(Cell(col.Key, row)).
					Close("td")
			}
			m.Close("tr")
			if hasColumn(t.Columns, ColProduct) {
				m.Component(drillDown(row, len(t.Columns)))
			}
		}
		if t.ShowTotals {
			m.Open("tr", "class", "report-totals")
			for _, col := range t.Columns {
				m.Open("td", "class", "column-"+string(col.Key))
				switch col.Key {
				case ColOrderID:
					m.Element("strong", helpers.T(ctx, "totals.label"))
				default:
					m.Text(t.Totals[col.Key])
				}
				m.Close("td")
			}
			m.Close("tr")
		}
		m.Close("tbody").Close("table")
		return m.Err()
	})
}

func drillDown(row RowView, span int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		m.Open("tr", "class", "product-details", "id", "products-"+row.OrderID, "hidden?", helpers.Flag(!row.Expanded)).
			Open("td", "colspan", strconv.Itoa(span)).
			Open("table", "class", "widefat product-items").
			Open("thead").Open("tr").
			Element("th", helpers.T(ctx, "item.name")).
			Element("th", helpers.T(ctx, "item.sku")).
			Element("th", helpers.T(ctx, "item.quantity")).
			Element("th", helpers.T(ctx, "item.weight")).
			Close("tr").Close("thead").
			Open("tbody")
		for _, item := range row.Items {
			m.Open("tr").
				Element("td", item.Name).
				Element("td", item.SKU).
				Element("td", item.Quantity).
				Element("td", item.Weight).
				Close("tr")
		}
		m.Close("tbody").Close("table").Close("td").Close("tr")
		return m.Err()
	})
}

func hasColumn(cols []Column, key ColumnKey) bool {
	for _, col := range cols {
		if col.Key == key {
			return true
		}
	}
	return false
}
