package helpers

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/i18n"
)

// Date formats the timestamp in loc with the provided layout (defaults to 2006-01-02 15:04:05).
func Date(ts time.Time, layout string, loc *time.Location) string {
	if layout == "" {
		layout = "2006-01-02 15:04:05"
	}
	if loc == nil {
		loc = time.UTC
	}
	return ts.In(loc).Format(layout)
}

// T translates key for the request language.
func T(ctx context.Context, key string, args ...any) string {
	return i18n.T(ctx, key, args...)
}

// Lang returns the BCP 47 tag of the request language.
func Lang(ctx context.Context) string {
	return i18n.FromContext(ctx).Lang()
}

// TextComponent returns a templ component that renders escaped text.
func TextComponent(value string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(value))
		return err
	})
}
