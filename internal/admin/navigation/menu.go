package navigation

import (
	"strings"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/rbac"
)

// MenuGroup is a titled block of the admin sidebar.
type MenuGroup struct {
	Key        string
	LabelKey   string
	Capability rbac.Capability
	Items      []MenuItem
}

// MenuItem is one sidebar link. LabelKey is an i18n message key.
type MenuItem struct {
	Key         string
	LabelKey    string
	Capability  rbac.Capability
	Href        string
	Pattern     string
	MatchPrefix bool
}

// BuildMenu returns the sidebar entries rooted at basePath.
func BuildMenu(basePath string) []MenuGroup {
	return []MenuGroup{
		{
			Key:      "reports",
			LabelKey: "menu.report",
			Items: []MenuItem{
				{
					Key:         "report",
					LabelKey:    "menu.report",
					Capability:  rbac.CapReportView,
					Href:        Join(basePath, "/report"),
					Pattern:     Join(basePath, "/report"),
					MatchPrefix: true,
				},
				{
					Key:         "review",
					LabelKey:    "menu.review",
					Capability:  rbac.CapReviewView,
					Href:        Join(basePath, "/review"),
					Pattern:     Join(basePath, "/review"),
					MatchPrefix: true,
				},
			},
		},
	}
}

// Join appends suffix to the admin base path.
func Join(basePath, suffix string) string {
	base := strings.TrimRight(strings.TrimSpace(basePath), "/")
	if suffix == "" {
		if base == "" {
			return "/"
		}
		return base
	}
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	return base + suffix
}
