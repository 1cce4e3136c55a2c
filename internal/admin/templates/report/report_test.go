package report

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/i18n"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	adminreport "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/report"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/weights"
)

func sampleReport() adminreport.Report {
	paid1 := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	paid2 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	w1 := weights.Breakdown{}
	w1.Add(weights.MetalSilver, weights.UnitOunces, decimal.RequireFromString("2"))
	w2 := weights.Breakdown{}
	w2.Add(weights.MetalGold, weights.UnitGrams, decimal.RequireFromString("20"))
	w3 := weights.Breakdown{}
	w3.Add(weights.MetalSilver, weights.UnitOunces, decimal.RequireFromString("5"))

	totals := weights.Breakdown{}
	totals.Merge(w1)
	totals.Merge(w2)

	return adminreport.Report{
		Mode: adminreport.ModeStandard,
		Rows: []adminreport.Row{
			{
				OrderID:   2,
				Status:    orders.StatusProcessing,
				PaidAt:    &paid1,
				PaidLabel: "2024-03-05 09:00:00",
				Weights:   w1,
				Included:  true,
				Items:     []adminreport.ItemLine{{ProductID: 10, Name: "Silver coin", SKU: "AG-1", Quantity: 2, Weight: "1"}},
			},
			{
				OrderID:   1,
				Status:    orders.StatusCancelled,
				PaidAt:    &paid2,
				PaidLabel: "2024-03-01 10:00:00",
				Weights:   w2,
				Included:  true,
			},
			{
				OrderID:   7,
				Status:    orders.StatusProcessing,
				PaidAt:    &paid2,
				PaidLabel: "2024-03-01 10:00:00",
				Weights:   w3,
				TestOrder: true,
			},
		},
		Totals:     totals,
		Pagination: adminreport.Pagination{Page: 2, PageSize: 3, TotalItems: 9, TotalPages: 3},
		Sort:       orders.Sort{Key: orders.SortKeyPaidDate, Direction: orders.SortDirectionDesc},
		Months:     []orders.YearMonth{{Year: 2024, Month: time.March}},
	}
}

func sampleInput(values url.Values) Input {
	return Input{
		BasePath:  "/admin",
		Path:      "/admin/report",
		Values:    values,
		Params:    adminreport.ParamsFromValues(values, adminreport.ModeStandard, 3),
		Report:    sampleReport(),
		CSRFToken: "tok",
	}
}

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return doc
}

func TestMonthOptionsAreLocalized(t *testing.T) {
	t.Parallel()

	months := []orders.YearMonth{{Year: 2024, Month: time.March}, {Year: 2023, Month: time.December}}
	params := adminreport.Params{Mode: adminreport.ModeStandard, Month: "202403"}

	en := buildFilters(context.Background(), params, months).Months
	require.Len(t, en, 3)
	require.Equal(t, "March 2024", en[1].Label)
	require.True(t, en[1].Selected)
	require.Equal(t, "December 2023", en[2].Label)

	ctx := i18n.WithLocalizer(context.Background(), i18n.MustLoad().Localizer(language.Japanese))
	ja := buildFilters(ctx, params, months).Months
	require.Equal(t, "2024年3月", ja[1].Label)
	require.Equal(t, "202403", ja[1].Value)
	require.Equal(t, "2023年12月", ja[2].Label)
}

func TestToggleAllLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "action.view_all", ToggleAllLabel(nil))
	require.Equal(t, "action.view_all", ToggleAllLabel([]RowView{{Expanded: true}, {Expanded: false}}))
	require.Equal(t, "action.hide_all", ToggleAllLabel([]RowView{{Expanded: true}, {Expanded: true}}))
}

func TestEveryColumnHasRenderer(t *testing.T) {
	t.Parallel()

	for _, col := range Columns(false) {
		_, ok := cellRenderers[col.Key]
		require.True(t, ok, "column %s has no renderer", col.Key)
	}
	require.Len(t, Columns(false), 11)
	require.Len(t, Columns(true), 10)
}

func TestIndexRendersRowsTotalsAndControls(t *testing.T) {
	t.Parallel()

	values := url.Values{adminreport.ParamPreset: {"last_month"}, adminreport.ParamNonce: {"tok"}}
	data := BuildPageData(context.Background(), sampleInput(values))
	doc := render(t, Index(data))

	rows := doc.Find("table.weight-report-table > tbody > tr[data-order-id]")
	require.Equal(t, 3, rows.Length())

	first := rows.Eq(0)
	require.True(t, first.HasClass("order-status-processing"))
	require.Equal(t, "/admin/orders/2", first.Find("td.column-orderid a").AttrOr("href", ""))
	require.Equal(t, "2", strings.TrimSpace(first.Find("td.column-silver-oz").Text()))
	require.Equal(t, "-", strings.TrimSpace(first.Find("td.column-gold-gram").Text()))
	require.Equal(t, 1, first.Find("button.edit-paid-date").Length(), "processing rows are editable")
	require.Equal(t, "View", strings.TrimSpace(first.Find("button.toggle-products").Text()))

	second := rows.Eq(1)
	require.True(t, second.HasClass("order-status-cancelled"))
	require.Equal(t, 0, second.Find("button.edit-paid-date").Length(), "only processing rows are editable")

	details := doc.Find("tr#products-2")
	require.Equal(t, 1, details.Length())
	_, hidden := details.Attr("hidden")
	require.True(t, hidden)
	require.Equal(t, "AG-1", details.Find("table.product-items tbody td").Eq(1).Text())

	totals := doc.Find("tr.report-totals")
	require.Equal(t, "Total Weight:", strings.TrimSpace(totals.Find("td.column-orderid").Text()))
	require.Equal(t, "2 oz", strings.TrimSpace(totals.Find("td.column-silver-oz").Text()))
	require.Equal(t, "20 grams", strings.TrimSpace(totals.Find("td.column-gold-gram").Text()))
	require.Equal(t, "0 oz", strings.TrimSpace(totals.Find("td.column-copper-oz").Text()))

	sortLink := doc.Find("th.column-paiddate a")
	sortURL, err := url.Parse(sortLink.AttrOr("href", ""))
	require.NoError(t, err)
	require.Equal(t, "asc", sortURL.Query().Get(adminreport.ParamOrder))
	require.Equal(t, "paiddate", sortURL.Query().Get(adminreport.ParamOrderBy))

	pdfURL, err := url.Parse(doc.Find("a.generate-pdf").AttrOr("href", ""))
	require.NoError(t, err)
	require.Equal(t, "ganerated", pdfURL.Query().Get(adminreport.ParamExport))
	require.Equal(t, "tok", pdfURL.Query().Get(adminreport.ParamNonce))
	require.Equal(t, "last_month", pdfURL.Query().Get(adminreport.ParamPreset))

	form := doc.Find("form.report-filters")
	require.Equal(t, "tok", form.Find(`input[name="ordernonce"]`).AttrOr("value", ""))
	require.Equal(t, "last_month", form.Find(`select[name="filter_month"] option[selected]`).AttrOr("value", ""))
	require.Equal(t, "wc-processing", form.Find(`select[name="order_status"] option[selected]`).AttrOr("value", ""))
	require.Equal(t, 2, form.Find(`select[name="m"] option`).Length())

	pager := doc.Find(".tablenav-pages").First()
	require.Equal(t, "9 items", strings.TrimSpace(pager.Find(".displaying-num").Text()))
	prev, err := url.Parse(pager.Find("a.pagination-prev").AttrOr("href", ""))
	require.NoError(t, err)
	require.Equal(t, "1", prev.Query().Get(adminreport.ParamPage))

	require.Equal(t, "View All", strings.TrimSpace(doc.Find("a.toggle-all-products").Text()))
}

func TestIndexExpandedShowsAllDrillDowns(t *testing.T) {
	t.Parallel()

	values := url.Values{adminreport.ParamExpanded: {"all"}}
	doc := render(t, Index(BuildPageData(context.Background(), sampleInput(values))))

	doc.Find("tr.product-details").Each(func(_ int, s *goquery.Selection) {
		_, hidden := s.Attr("hidden")
		require.False(t, hidden)
	})
	require.Equal(t, "Hide All", strings.TrimSpace(doc.Find("a.toggle-all-products").Text()))
	require.Equal(t, "Hide", strings.TrimSpace(doc.Find("button.toggle-products").First().Text()))
	require.Equal(t, "/admin/report", doc.Find("a.toggle-all-products").AttrOr("href", ""))
}

func TestReviewModeHasNoFilters(t *testing.T) {
	t.Parallel()

	in := sampleInput(url.Values{})
	in.Path = "/admin/review"
	in.Params.Mode = adminreport.ModeReview
	data := BuildPageData(context.Background(), in)
	doc := render(t, Index(data))

	require.Equal(t, "Under Review Orders", data.Title)
	require.Equal(t, 0, doc.Find("form.report-filters").Length())
	require.Equal(t, 0, doc.Find("a.generate-pdf").Length())
	require.Equal(t, "review_per_page", doc.Find(`form.screen-options input[name="option"]`).AttrOr("value", ""))
	require.Equal(t, "/admin/review/screen-options", doc.Find("form.screen-options").AttrOr("action", ""))
}

func TestEmptyTableShowsMessage(t *testing.T) {
	t.Parallel()

	in := sampleInput(url.Values{})
	in.Report.Rows = nil
	in.Error = "The selected filter is invalid"
	doc := render(t, Index(BuildPageData(context.Background(), in)))

	require.Equal(t, "No orders found.", strings.TrimSpace(doc.Find("tr.no-items").Text()))
	require.Equal(t, 0, doc.Find("tr.report-totals").Length())
	require.Contains(t, doc.Find(".notice-error").Text(), "invalid")
}

func TestBuildDocumentDropsTestOrders(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	doc := BuildDocument(context.Background(), sampleReport(), created)

	require.Len(t, doc.Columns, 10)
	require.Equal(t, "Order No:", doc.Columns[0])
	require.Len(t, doc.Rows, 2)
	require.Equal(t, "#2", doc.Rows[0][0])
	require.Equal(t, "#1", doc.Rows[1][0])
	require.Equal(t, "Total Weight:", doc.Totals[0])
	require.Equal(t, "2 oz", doc.Totals[2])
	require.Equal(t, created, doc.Created)
}

func TestOrderPageShowsReviewNoticeAndTestOrderBox(t *testing.T) {
	t.Parallel()

	paid := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	order := orders.Order{
		ID:     5,
		Status: orders.StatusCancelled,
		PaidAt: &paid,
		Items:  []orders.LineItem{{ProductID: 11, Quantity: 1}},
		Flags:  orders.Flags{UnderReview: true, TestOrder: true, TestOrderSaved: true},
	}
	products := map[int64]orders.Product{11: {ID: 11, Name: "Gold bar", SKU: "AU-20", WeightValue: "20", WeightUnit: "grams"}}

	data := BuildOrderData(context.Background(), OrderInput{
		BasePath:  "/admin",
		Order:     order,
		Products:  products,
		CSRFToken: "tok",
		CanAccept: true,
	})
	doc := render(t, OrderPage(data))

	notice := doc.Find(".order-under-review")
	require.Contains(t, notice.Text(), "This order #5 is under review.")
	require.Equal(t, "/admin/review/accept", notice.Find("button.accept-review").AttrOr("data-endpoint", ""))
	require.Equal(t, "Accept the review for Order #5?", notice.Find("button.accept-review").AttrOr("data-confirm", ""))

	form := doc.Find("form.test-order-box")
	require.Equal(t, "/admin/orders/5/test-order", form.AttrOr("action", ""))
	require.Equal(t, "false", form.AttrOr("data-confirm-on-load", ""))
	_, checked := form.Find("#order_checkbox").Attr("checked")
	require.True(t, checked)
	require.Equal(t, "tok", form.Find(`input[name="_csrf"]`).AttrOr("value", ""))

	require.Equal(t, "Gold bar", doc.Find("table.order-items td").First().Text())
	require.Equal(t, "20 grams", doc.Find("table.order-items td").Eq(3).Text())
	require.Equal(t, "2024-03-01 10:00:00", doc.Find("dd.order-paid").Text())
}

func TestOrderPageWithoutAcceptCapability(t *testing.T) {
	t.Parallel()

	data := BuildOrderData(context.Background(), OrderInput{
		BasePath: "/admin",
		Order:    orders.Order{ID: 6, Status: orders.StatusCancelled, Flags: orders.Flags{UnderReview: true}},
	})
	doc := render(t, OrderPage(data))

	require.Equal(t, 1, doc.Find(".order-under-review").Length())
	require.Equal(t, 0, doc.Find("button.accept-review").Length())
	require.Equal(t, "true", doc.Find("form.test-order-box").AttrOr("data-confirm-on-load", ""))
	require.Equal(t, "Not paid", doc.Find("dd.order-paid").Text())
}
