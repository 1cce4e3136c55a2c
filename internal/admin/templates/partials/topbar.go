package partials

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/helpers"
)

// Topbar renders the environment badge and the signed-in user.
func Topbar() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		env := middleware.EnvironmentFromContext(ctx)
		m.Open("header", "class", "admin-topbar").
			Open("span", "class", "admin-topbar__env", "data-environment-badge", env).
			Element("span", environmentBadge(env), "aria-hidden", "true").
			Close("span")
		if user, ok := middleware.UserFromContext(ctx); ok {
			name := user.Email
			if name == "" {
				name = user.UID
			}
			m.Element("span", name, "class", "admin-topbar__user", "data-user-menu", user.UID)
		}
		m.Close("header")
		return m.Err()
	})
}

func environmentBadge(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return "PRD"
	case "staging", "stg":
		return "STG"
	default:
		return "DEV"
	}
}
