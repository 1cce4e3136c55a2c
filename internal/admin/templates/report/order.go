package report

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/flags"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/navigation"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/session"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/helpers"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/partials"
)

// OrderData is the payload of the order edit page.
type OrderData struct {
	Title     string
	OrderID   string
	Status    string
	PaidLabel string
	Items     []ItemView
	CSRFToken string
	BackURL   string
	Review    *ReviewNotice
	TestOrder TestOrderBox
	Flashes   []session.Flash
}

// ReviewNotice is the under-review banner.
type ReviewNotice struct {
	Message   string
	Confirm   string
	AcceptURL string
	CanAccept bool
}

// TestOrderBox is the test-order form.
type TestOrderBox struct {
	Action         string
	Checked        bool
	ConfirmOnLoad  bool
	ConfirmInitial string
	ConfirmChange  string
}

// OrderInput bundles what the handler loaded for the order page.
type OrderInput struct {
	BasePath  string
	Order     orders.Order
	Products  map[int64]orders.Product
	Location  *time.Location
	CSRFToken string
	CanAccept bool
	Flashes   []session.Flash
}

// BuildOrderData assembles the order edit page view model.
func BuildOrderData(ctx context.Context, in OrderInput) OrderData {
	id := strconv.FormatInt(in.Order.ID, 10)
	data := OrderData{
		Title:     helpers.T(ctx, "order.title", id),
		OrderID:   id,
		Status:    helpers.T(ctx, "status."+string(in.Order.Status)),
		PaidLabel: helpers.T(ctx, "order.not_paid"),
		Items:     make([]ItemView, 0, len(in.Order.Items)),
		CSRFToken: in.CSRFToken,
		BackURL:   navigation.Join(in.BasePath, "/report"),
		TestOrder: TestOrderBox{
			Action:         navigation.Join(in.BasePath, "/orders/"+id+"/test-order"),
			Checked:        in.Order.Flags.TestOrder,
			ConfirmOnLoad:  flags.NeedsConfirmation(in.Order.Flags),
			ConfirmInitial: helpers.T(ctx, "testorder.confirm_initial"),
			ConfirmChange:  helpers.T(ctx, "testorder.confirm_change"),
		},
		Flashes: in.Flashes,
	}
	if in.Order.PaidAt != nil {
		data.PaidLabel = helpers.Date(*in.Order.PaidAt, "", in.Location)
	}
	for _, item := range in.Order.Items {
		product := in.Products[item.ProductID]
		name := item.Name
		if name == "" {
			name = product.Name
		}
		data.Items = append(data.Items, ItemView{
			Name:     name,
			SKU:      product.SKU,
			Quantity: strconv.Itoa(item.Quantity),
			Weight:   weightLabel(product),
		})
	}
	if notice := flags.NoticeFor(in.Order); notice != nil {
		data.Review = &ReviewNotice{
			Message:   helpers.T(ctx, "notice.under_review", strconv.FormatInt(notice.OrderID, 10)),
			Confirm:   helpers.T(ctx, "accept.confirm", strconv.FormatInt(notice.OrderID, 10)),
			AcceptURL: navigation.Join(in.BasePath, "/review/accept"),
			CanAccept: in.CanAccept,
		}
	}
	return data
}

func weightLabel(p orders.Product) string {
	if p.WeightValue == "" {
		return ""
	}
	if p.WeightUnit == "" {
		return p.WeightValue
	}
	return p.WeightValue + " " + p.WeightUnit
}

// OrderPage renders the order edit page.
func OrderPage(data OrderData) templ.Component {
	return partials.Page(data.Title, data.Flashes, orderBody(data))
}

func orderBody(data OrderData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		if data.Review != nil {
			m.Open("div", "class", "notice notice-warning order-under-review", "data-order-id", data.OrderID).
				Element("p", data.Review.Message)
			if data.Review.CanAccept {
				m.Element("button", helpers.T(ctx, "action.accept"),
					"type", "button",
					"class", "button button-primary accept-review",
					"data-order-id", data.OrderID,
					"data-endpoint", data.Review.AcceptURL,
					"data-confirm", data.Review.Confirm,
				)
			}
			m.Close("div")
		}

		m.Open("dl", "class", "order-summary").
			Element("dt", helpers.T(ctx, "order.status")).
			Element("dd", data.Status, "class", "order-status").
			Element("dt", helpers.T(ctx, "order.paid")).
			Element("dd", data.PaidLabel, "class", "order-paid").
			Close("dl")

		m.Element("h2", helpers.T(ctx, "order.items")).
			Open("table", "class", "widefat order-items").
			Open("thead").Open("tr").
			Element("th", helpers.T(ctx, "item.name")).
			Element("th", helpers.T(ctx, "item.sku")).
			Element("th", helpers.T(ctx, "item.quantity")).
			Element("th", helpers.T(ctx, "item.weight")).
			Close("tr").Close("thead").Open("tbody")
		for _, item := range data.Items {
			m.Open("tr").
				Element("td", item.Name).
				Element("td", item.SKU).
				Element("td", item.Quantity).
				Element("td", item.Weight).
				Close("tr")
		}
		m.Close("tbody").Close("table")

		box := data.TestOrder
		m.Open("form",
			"method", "post",
			"action", box.Action,
			"class", "postbox test-order-box",
			"data-confirm-on-load", strconv.FormatBool(box.ConfirmOnLoad),
			"data-confirm-initial", box.ConfirmInitial,
			"data-confirm-change", box.ConfirmChange,
		).
			Element("h2", helpers.T(ctx, "testorder.title")).
			Open("input", "type", "hidden", "name", middleware.CSRFFormField, "value", data.CSRFToken).
			Open("input", "type", "hidden", "name", "test_order_status", "value", "yes").
			Open("label").
			Open("input", "type", "checkbox", "id", "order_checkbox", "name", "order_checkbox", "value", "yes", "checked?", helpers.Flag(box.Checked)).
			Text(" " + helpers.T(ctx, "testorder.label")).
			Close("label").
			Element("button", helpers.T(ctx, "action.save"), "type", "submit", "class", "button").
			Close("form")

		m.Element("a", helpers.T(ctx, "order.back"), "href", data.BackURL, "class", "back-to-report")
		return m.Err()
	})
}
