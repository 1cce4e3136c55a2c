package report

import (
	"context"
	"strconv"
	"time"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/pdf"
	adminreport "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/report"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/helpers"
)

// BuildDocument lays out an export report as a PDF table. Test orders are
// dropped and the totals row is always present.
func BuildDocument(ctx context.Context, rep adminreport.Report, created time.Time) pdf.Document {
	cols := Columns(true)
	doc := pdf.Document{
		Title:   helpers.T(ctx, "report.title"),
		Columns: make([]string, 0, len(cols)),
		Totals:  make([]string, 0, len(cols)),
		Created: created,
	}
	for _, col := range cols {
		doc.Columns = append(doc.Columns, helpers.T(ctx, col.Label))
	}

	for _, row := range rep.ExportRows() {
		line := make([]string, 0, len(cols))
		for _, col := range cols {
			switch col.Key {
			case ColOrderID:
				line = append(line, "#"+strconv.FormatInt(row.OrderID, 10))
			case ColPaidDate:
				line = append(line, row.PaidLabel)
			default:
				wc, _ := weightColumnFor(col.Key)
				line = append(line, row.Figure(wc.Metal, wc.Unit))
			}
		}
		doc.Rows = append(doc.Rows, line)
	}

	for _, col := range cols {
		switch col.Key {
		case ColOrderID:
			doc.Totals = append(doc.Totals, helpers.T(ctx, "totals.label"))
		case ColPaidDate:
			doc.Totals = append(doc.Totals, "")
		default:
			wc, _ := weightColumnFor(col.Key)
			doc.Totals = append(doc.Totals, rep.TotalFigure(wc.Metal, wc.Unit))
		}
	}
	return doc
}

func weightColumnFor(key ColumnKey) (weightColumn, bool) {
	for _, wc := range weightColumns {
		if wc.Key == key {
			return wc, true
		}
	}
	return weightColumn{}, false
}
