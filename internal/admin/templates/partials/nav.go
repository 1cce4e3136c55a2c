package partials

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/navigation"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/rbac"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/templates/helpers"
)

// Sidebar renders the admin menu, hiding entries the user may not open.
func Sidebar(menu []navigation.MenuGroup) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(ctx, w)
		m.Open("nav", "class", "admin-menu", "aria-label", helpers.T(ctx, "menu.report"))
		caps := helpers.Capabilities(ctx)
		for _, group := range menu {
			items := visibleItems(group, caps)
			if len(items) == 0 {
				continue
			}
			m.Open("ul", "class", "admin-menu__group", "data-group", group.Key)
			for _, item := range items {
				active := helpers.IsCurrent(ctx, item)
				current := ""
				if active {
					current = "page"
				}
				m.Open("li").
					Open("a",
						"href", item.Href,
						"class", helpers.Classes("admin-menu__link", activeClass(active)),
						"aria-current", current,
					).
					Text(helpers.T(ctx, item.LabelKey)).
					Close("a").
					Close("li")
			}
			m.Close("ul")
		}
		m.Close("nav")
		return m.Err()
	})
}

func activeClass(active bool) string {
	if active {
		return "is-current"
	}
	return ""
}

func visibleItems(group navigation.MenuGroup, caps map[rbac.Capability]bool) []navigation.MenuItem {
	if !allowed(caps, group.Capability) {
		return nil
	}
	items := make([]navigation.MenuItem, 0, len(group.Items))
	for _, item := range group.Items {
		if allowed(caps, item.Capability) {
			items = append(items, item)
		}
	}
	return items
}

func allowed(caps map[rbac.Capability]bool, capability rbac.Capability) bool {
	return capability == "" || caps[capability]
}
