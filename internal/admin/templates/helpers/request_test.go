package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/navigation"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/rbac"
)

func TestIsCurrent(t *testing.T) {
	t.Parallel()

	report := navigation.MenuItem{Pattern: "/admin/report", MatchPrefix: true}
	exact := navigation.MenuItem{Pattern: "/admin/review"}

	tests := []struct {
		path string
		item navigation.MenuItem
		want bool
	}{
		{path: "/admin/report", item: report, want: true},
		{path: "/admin/report/", item: report, want: true},
		{path: "/admin/report/screen-options", item: report, want: true},
		{path: "/admin/reports", item: report, want: false},
		{path: "/admin/review/accept", item: exact, want: false},
		{path: "//admin//review", item: exact, want: true},
	}
	for _, tc := range tests {
		ctx := middleware.ContextWithRequestInfo(context.Background(), middleware.RequestInfo{Path: tc.path, BasePath: "/admin"})
		if got := IsCurrent(ctx, tc.item); got != tc.want {
			t.Errorf("IsCurrent(%q, %q) = %v, want %v", tc.path, tc.item.Pattern, got, tc.want)
		}
	}
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	require.Empty(t, Capabilities(context.Background()))

	ctx := middleware.ContextWithUser(context.Background(), &middleware.User{UID: "u1", Roles: []string{"admin"}})
	caps := Capabilities(ctx)
	require.True(t, caps[rbac.CapOrdersReviewAccept])
	require.True(t, caps[rbac.CapReportView])

	ctx = middleware.ContextWithUser(context.Background(), &middleware.User{UID: "u2", Roles: []string{"support"}})
	caps = Capabilities(ctx)
	require.False(t, caps[rbac.CapReportView], "support does not read the report")
}
