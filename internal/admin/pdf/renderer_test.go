package pdf

import (
	"bytes"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"
)

var pageCount = regexp.MustCompile(`/Count (\d+)`)

func sampleDocument(rows int) Document {
	doc := Document{
		Title:   "Weight Report",
		Columns: []string{"Order", "Paid Date", "Silver (oz)"},
		Totals:  []string{"Total Weight:", "", "12 oz"},
		Created: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < rows; i++ {
		doc.Rows = append(doc.Rows, []string{`<a href="/admin/orders/1">#` + strconv.Itoa(i) + `</a>`, "2024-03-01", "-"})
	}
	return doc
}

func TestRenderProducesMultiPageDocument(t *testing.T) {
	t.Parallel()

	r := NewRenderer(Config{Header: "ACME Bullion", Footer: "Confidential"})
	out, err := r.RenderBytes(sampleDocument(150))
	require.NoError(t, err)
	require.True(t, len(out) > 4 && string(out[:4]) == "%PDF")

	match := pageCount.FindSubmatch(out)
	require.NotNil(t, match)
	pages, err := strconv.Atoi(string(match[1]))
	require.NoError(t, err)
	require.Greater(t, pages, 1)
}

func TestRenderRejectsEmptyColumns(t *testing.T) {
	t.Parallel()

	_, err := NewRenderer(Config{}).RenderBytes(Document{})
	require.ErrorIs(t, err, ErrEmptyTable)
}

func TestTextStripsMarkup(t *testing.T) {
	t.Parallel()

	r := NewRenderer(Config{})
	require.Equal(t, "#5012", r.text(`<a href="https://shop.example/wp-admin/post.php?post=5012">#5012</a>`))
	require.Equal(t, "Gold & Silver", r.text("Gold &amp; <b>Silver</b>"))
	require.Equal(t, "a b", r.text("  a \n b "))
}

func TestNewRendererDefaults(t *testing.T) {
	t.Parallel()

	r := NewRenderer(Config{Orientation: "x", FontSize: -1, Margin: -3})
	require.Equal(t, "L", r.cfg.Orientation)
	require.Equal(t, "A4", r.cfg.PageSize)
	require.Equal(t, 9.0, r.cfg.FontSize)
	require.Equal(t, 0.0, r.cfg.Margin)

	require.Equal(t, "P", NewRenderer(Config{Orientation: "p"}).cfg.Orientation)
}

const testFont = "testdata/DejaVuSansCondensed.ttf"

func TestFontKeepsJapaneseTextWithTrueTypeFont(t *testing.T) {
	t.Parallel()

	r := NewRenderer(Config{FontFile: testFont})
	family, encode := r.font(fpdf.New("L", "mm", "A4", ""))
	require.Equal(t, unicodeFamily, family)
	require.Equal(t, "金 グラム", encode(r.text("<b>金</b> グラム")))

	builtin := NewRenderer(Config{})
	family, encode = builtin.font(fpdf.New("L", "mm", "A4", ""))
	require.Equal(t, builtinFamily, family)
	require.NotEqual(t, "金 グラム", encode(builtin.text("金 グラム")))
}

func TestRenderJapaneseDocument(t *testing.T) {
	t.Parallel()

	doc := Document{
		Title:   "重量レポート",
		Columns: []string{"注文", "支払日", "金 (グラム)"},
		Rows:    [][]string{{"#5012", "2024-03-01 10:00:00", "20 グラム"}},
		Totals:  []string{"合計重量:", "", "20 グラム"},
	}
	out, err := NewRenderer(Config{FontFile: testFont, Header: "ACME 貴金属"}).RenderBytes(doc)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	require.True(t, bytes.Contains(out, []byte("/FontFile2")), "TrueType font must be embedded")
}

func TestRenderMissingFontFails(t *testing.T) {
	t.Parallel()

	_, err := NewRenderer(Config{FontFile: "testdata/missing.ttf"}).RenderBytes(sampleDocument(1))
	require.Error(t, err)
}

func TestFileName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Report-1709251200.pdf", FileName(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}
