package report

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/helpers"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/weights"
)

// ColumnKey identifies a report column.
type ColumnKey string

const (
	ColOrderID      ColumnKey = "orderid"
	ColPaidDate     ColumnKey = "paiddate"
	ColSilverOz     ColumnKey = "silver-oz"
	ColSilverGram   ColumnKey = "silver-gram"
	ColGoldOz       ColumnKey = "gold-oz"
	ColGoldGram     ColumnKey = "gold-gram"
	ColPlatinumOz   ColumnKey = "platinum-oz"
	ColPlatinumGram ColumnKey = "platinum-gram"
	ColCopperOz     ColumnKey = "copper-oz"
	ColCopperGram   ColumnKey = "copper-gram"
	ColProduct      ColumnKey = "product"
)

// Column is a header entry. Label is an i18n key.
type Column struct {
	Key      ColumnKey
	Label    string
	Sortable bool
}

type weightColumn struct {
	Key   ColumnKey
	Metal weights.Metal
	Unit  weights.Unit
}

var weightColumns = []weightColumn{
	{ColSilverOz, weights.MetalSilver, weights.UnitOunces},
	{ColSilverGram, weights.MetalSilver, weights.UnitGrams},
	{ColGoldOz, weights.MetalGold, weights.UnitOunces},
	{ColGoldGram, weights.MetalGold, weights.UnitGrams},
	{ColPlatinumOz, weights.MetalPlatinum, weights.UnitOunces},
	{ColPlatinumGram, weights.MetalPlatinum, weights.UnitGrams},
	{ColCopperOz, weights.MetalCopper, weights.UnitOunces},
	{ColCopperGram, weights.MetalCopper, weights.UnitGrams},
}

// Columns returns the table columns in display order. The product
// drill-down column is left out of exports.
func Columns(export bool) []Column {
	cols := []Column{
		{Key: ColOrderID, Label: "col.orderid"},
		{Key: ColPaidDate, Label: "col.paiddate", Sortable: true},
	}
	for _, wc := range weightColumns {
		cols = append(cols, Column{Key: wc.Key, Label: "col." + string(wc.Key)})
	}
	if !export {
		cols = append(cols, Column{Key: ColProduct, Label: "col.product"})
	}
	return cols
}

// cellRenderers maps each column to the function drawing its cell.
var cellRenderers = map[ColumnKey]func(RowView) templ.Component{
	ColOrderID:  orderIDCell,
	ColPaidDate: paidDateCell,
	ColProduct:  productCell,
}

func init() {
	for _, wc := range weightColumns {
		key := wc.Key
		cellRenderers[key] = func(row RowView) templ.Component {
			return helpers.TextComponent(row.Figures[key])
		}
	}
}

// Cell renders the cell of row for column key.
func Cell(key ColumnKey, row RowView) templ.Component {
	render, ok := cellRenderers[key]
	if !ok {
		return templ.NopComponent
	}
	return render(row)
}

func orderIDCell(row RowView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return helpers.NewMarkup(ctx, w).
			Element("a", "#"+row.OrderID, "href", row.OrderURL).
			Err()
	})
}

func paidDateCell(row RowView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		m.Element("span", row.PaidLabel, "class", "paid-date", "data-paid-date", row.OrderID)
		if row.Editable {
			m.Element("button", "✎",
				"type", "button",
				"class", "button-link edit-paid-date",
				"data-order-id", row.OrderID,
				"data-current", row.PaidLabel,
				"aria-label", helpers.T(ctx, "paiddate.prompt"),
			)
		}
		return m.Err()
	})
}

func productCell(row RowView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		label := "action.view"
		if row.Expanded {
			label = "action.hide"
		}
		return helpers.NewMarkup(ctx, w).
			Element("button", helpers.T(ctx, label),
				"type", "button",
				"class", "button toggle-products",
				"data-order-id", row.OrderID,
				"aria-expanded", boolString(row.Expanded),
				"data-label-view", helpers.T(ctx, "action.view"),
				"data-label-hide", helpers.T(ctx, "action.hide"),
			).
			Err()
	})
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
