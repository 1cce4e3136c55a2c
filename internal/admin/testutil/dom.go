package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// Page is a parsed admin page.
type Page struct {
	*goquery.Document
}

// ParseHTML parses an admin response body, failing the test on malformed markup.
func ParseHTML(t testing.TB, body []byte) *Page {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err, "parse admin page")
	return &Page{Document: doc}
}

// ReportRows selects the order rows of the weight report table. The totals
// row and the empty-state row are not included.
func (p *Page) ReportRows() *goquery.Selection {
	return p.Find("table.weight-report-table > tbody > tr[data-order-id]")
}

// ReportOrderIDs lists the order IDs in display order.
func (p *Page) ReportOrderIDs() []string {
	return p.ReportRows().Map(func(_ int, row *goquery.Selection) string {
		return row.AttrOr("data-order-id", "")
	})
}

// Notice returns the text of the admin notices of kind, such as "error" or "success".
func (p *Page) Notice(kind string) string {
	return strings.TrimSpace(p.Find(".notice-" + kind).Text())
}

// UnderReview reports whether the order page shows the review banner.
func (p *Page) UnderReview() bool {
	return p.Find(".order-under-review").Length() > 0
}
