package partials

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/navigation"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/session"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/helpers"
)

// AssetsPath is where the embedded static files are served.
const AssetsPath = "/public/static/"

// Page wraps body in the admin document shell.
func Page(title string, flashes []session.Flash, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		m.Raw("<!DOCTYPE html>").
			Open("html", "lang", helpers.Lang(ctx)).
			Open("head").
			Raw(`<meta charset="utf-8">`).
			Open("meta", "name", "csrf-token", "content", middleware.CSRFTokenFromContext(ctx)).
			Element("title", title).
			Open("link", "rel", "stylesheet", "href", AssetsPath+"admin.css").
			Open("script", "src", AssetsPath+"admin.js", "defer?", "on").Close("script").
			Close("head").
			Open("body", "class", "admin").
			Component(Topbar()).
			Open("div", "class", "admin-layout").
			Component(Sidebar(navigation.BuildMenu(helpers.BasePath(ctx)))).
			Open("main", "class", "admin-main").
			Element("h1", title, "class", "wp-heading-inline").
			Component(Flashes(flashes)).
			Component(body).
			Close("main").
			Close("div").
			Close("body").
			Close("html")
		return m.Err()
	})
}

// Flashes renders queued session notices.
func Flashes(flashes []session.Flash) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		for _, flash := range flashes {
			kind := flash.Kind
			if kind == "" {
				kind = "info"
			}
			m.Open("div", "class", "notice notice-"+kind, "role", "status").
				Element("p", flash.Message).
				Close("div")
		}
		return m.Err()
	})
}
