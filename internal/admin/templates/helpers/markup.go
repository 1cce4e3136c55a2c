package helpers

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Markup writes HTML to w, escaping text and attribute values. The first
// write error sticks and later calls become no-ops.
type Markup struct {
	ctx context.Context
	w   io.Writer
	err error
}

// NewMarkup returns a writer bound to the render context.
func NewMarkup(ctx context.Context, w io.Writer) *Markup {
	return &Markup{ctx: ctx, w: w}
}

// Raw writes trusted markup unchanged.
func (m *Markup) Raw(s string) *Markup {
	if m.err == nil {
		_, m.err = io.WriteString(m.w, s)
	}
	return m
}

// Text writes escaped text.
func (m *Markup) Text(s string) *Markup {
	return m.Raw(templ.EscapeString(s))
}

// Open writes a start tag. attrs are name/value pairs; a pair whose value is
// the empty string is written as a bare boolean attribute when the name ends
// in "?" (for example "checked?") and skipped otherwise.
func (m *Markup) Open(tag string, attrs ...string) *Markup {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if boolean, ok := strings.CutSuffix(name, "?"); ok {
			if value != "" {
				b.WriteString(" ")
				b.WriteString(boolean)
			}
			continue
		}
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(templ.EscapeString(value))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return m.Raw(b.String())
}

// Close writes an end tag.
func (m *Markup) Close(tag string) *Markup {
	return m.Raw("</" + tag + ">")
}

// Element writes a start tag, escaped text and the end tag.
func (m *Markup) Element(tag, text string, attrs ...string) *Markup {
	return m.Open(tag, attrs...).Text(text).Close(tag)
}

// Component renders a nested component.
func (m *Markup) Component(c templ.Component) *Markup {
	if m.err == nil && c != nil {
		m.err = c.Render(m.ctx, m.w)
	}
	return m
}

// Err returns the first write error.
func (m *Markup) Err() error {
	return m.err
}

// Flag turns a bool into the value expected by boolean attributes.
func Flag(on bool) string {
	if on {
		return "on"
	}
	return ""
}

// Classes joins the non-empty class names.
func Classes(names ...string) string {
	out := names[:0:0]
	for _, name := range names {
		if strings.TrimSpace(name) != "" {
			out = append(out, name)
		}
	}
	return strings.Join(out, " ")
}
