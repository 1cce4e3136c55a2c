// Package pdf renders tabular documents with fpdf.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/microcosm-cc/bluemonday"
)

// ContentType is the MIME type of rendered documents.
const ContentType = "application/pdf"

const (
	builtinFamily = "Helvetica"
	unicodeFamily = "ReportSans"
)

// ErrEmptyTable is returned when a document has no columns.
var ErrEmptyTable = errors.New("pdf: document has no columns")

// Config controls page layout.
type Config struct {
	// Orientation is "L" (landscape) or "P" (portrait).
	Orientation string
	PageSize    string
	FontSize    float64
	Margin      float64
	Header      string
	Footer      string
	// FontFile is a TrueType font registered for UTF-8 text. Without it the
	// built-in Helvetica is used and text is limited to cp1252.
	FontFile string
}

// Document is a single table with an optional title and a trailing totals row.
type Document struct {
	Title   string
	Columns []string
	Rows    [][]string
	Totals  []string
	Created time.Time
}

// Renderer writes Documents as PDF.
type Renderer struct {
	cfg    Config
	policy *bluemonday.Policy
}

// NewRenderer constructs a renderer, filling in defaults for unset fields.
func NewRenderer(cfg Config) *Renderer {
	cfg.Orientation = strings.ToUpper(strings.TrimSpace(cfg.Orientation))
	if cfg.Orientation != "P" {
		cfg.Orientation = "L"
	}
	if cfg.PageSize == "" {
		cfg.PageSize = "A4"
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = 9
	}
	if cfg.Margin < 0 {
		cfg.Margin = 0
	}
	return &Renderer{cfg: cfg, policy: bluemonday.StrictPolicy()}
}

// FileName returns the download name for a report generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("Report-%d.pdf", t.Unix())
}

// Render writes doc to w. The column header row repeats on every page.
func (r *Renderer) Render(w io.Writer, doc Document) error {
	if len(doc.Columns) == 0 {
		return ErrEmptyTable
	}

	f := fpdf.New(r.cfg.Orientation, "mm", r.cfg.PageSize, "")
	f.SetMargins(r.cfg.Margin, r.cfg.Margin, r.cfg.Margin)
	f.SetAutoPageBreak(true, r.cfg.Margin+8)
	f.AliasNbPages("")
	if !doc.Created.IsZero() {
		f.SetCreationDate(doc.Created)
	}
	if doc.Title != "" {
		f.SetTitle(r.text(doc.Title), true)
	}

	family, encode := r.font(f)
	cell := func(value string) string { return encode(r.text(value)) }

	pageWidth, _ := f.GetPageSize()
	left, _, right, _ := f.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(doc.Columns))
	lineHeight := r.cfg.FontSize * 0.6

	tableHeader := func() {
		f.SetFont(family, "B", r.cfg.FontSize)
		f.SetFillColor(235, 235, 235)
		for _, col := range doc.Columns {
			f.CellFormat(colWidth, lineHeight, cell(col), "1", 0, "C", true, 0, "")
		}
		f.Ln(-1)
		f.SetFont(family, "", r.cfg.FontSize)
	}

	f.SetHeaderFunc(func() {
		if r.cfg.Header != "" {
			f.SetFont(family, "", r.cfg.FontSize)
			f.CellFormat(0, lineHeight, cell(r.cfg.Header), "", 1, "L", false, 0, "")
		}
		if f.PageNo() == 1 && doc.Title != "" {
			f.SetFont(family, "B", r.cfg.FontSize+4)
			f.CellFormat(0, lineHeight*2, cell(doc.Title), "", 1, "L", false, 0, "")
		}
		tableHeader()
	})
	f.SetFooterFunc(func() {
		f.SetY(-(r.cfg.Margin + 6))
		f.SetFont(family, "", r.cfg.FontSize-1)
		footer := fmt.Sprintf("%d/{nb}", f.PageNo())
		if r.cfg.Footer != "" {
			footer = cell(r.cfg.Footer) + "  " + footer
		}
		f.CellFormat(0, lineHeight, footer, "", 0, "C", false, 0, "")
	})

	f.AddPage()
	for _, row := range doc.Rows {
		for i := range doc.Columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			f.CellFormat(colWidth, lineHeight, cell(value), "1", 0, alignFor(i), false, 0, "")
		}
		f.Ln(-1)
	}
	if len(doc.Totals) > 0 {
		f.SetFont(family, "B", r.cfg.FontSize)
		for i := range doc.Columns {
			value := ""
			if i < len(doc.Totals) {
				value = doc.Totals[i]
			}
			f.CellFormat(colWidth, lineHeight, cell(value), "1", 0, alignFor(i), true, 0, "")
		}
		f.Ln(-1)
	}

	if err := f.Error(); err != nil {
		return fmt.Errorf("pdf: layout: %w", err)
	}
	if err := f.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

// RenderBytes renders doc into memory so callers can set headers only on success.
func (r *Renderer) RenderBytes(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// font registers the configured TrueType font on f and returns the family to
// select along with the encoder for cell text.
func (r *Renderer) font(f *fpdf.Fpdf) (string, func(string) string) {
	if r.cfg.FontFile == "" {
		return builtinFamily, f.UnicodeTranslatorFromDescriptor("")
	}
	f.AddUTF8Font(unicodeFamily, "", r.cfg.FontFile)
	f.AddUTF8Font(unicodeFamily, "B", r.cfg.FontFile)
	return unicodeFamily, func(s string) string { return s }
}

// text strips markup from cell content.
func (r *Renderer) text(value string) string {
	cleaned := html.UnescapeString(r.policy.Sanitize(value))
	return strings.Join(strings.Fields(cleaned), " ")
}

func alignFor(column int) string {
	if column == 0 {
		return "L"
	}
	return "R"
}
