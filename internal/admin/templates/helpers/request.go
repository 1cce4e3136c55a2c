package helpers

import (
	"context"
	"strings"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/navigation"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/rbac"
)

// BasePath returns the admin mount point of the current request.
func BasePath(ctx context.Context) string {
	return cleanRoute(middleware.BasePathFromContext(ctx))
}

// IsCurrent reports whether item points at the page being rendered.
func IsCurrent(ctx context.Context, item navigation.MenuItem) bool {
	current := cleanRoute(middleware.RequestPathFromContext(ctx))
	target := cleanRoute(item.Pattern)
	if current == target {
		return true
	}
	return item.MatchPrefix && target != "/" && strings.HasPrefix(current, target+"/")
}

// Capabilities returns the capabilities granted to the signed-in user. It is
// empty for anonymous requests.
func Capabilities(ctx context.Context) map[rbac.Capability]bool {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return nil
	}
	return rbac.CapabilitiesForRoles(user.Roles)
}

func cleanRoute(path string) string {
	path = strings.TrimSpace(path)
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	path = "/" + strings.Trim(path, "/")
	return path
}
