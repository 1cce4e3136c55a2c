package rbac

import "testing"

func TestHasCapabilityMatrix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		roles      []string
		capability Capability
		want       bool
	}{
		{
			name:       "admin has defined capability",
			roles:      []string{"admin"},
			capability: CapReportView,
			want:       true,
		},
		{
			name:       "admin denied for undefined capability",
			roles:      []string{"admin"},
			capability: Capability("made.up"),
			want:       false,
		},
		{
			name:       "ops can accept reviewed orders",
			roles:      []string{"ops"},
			capability: CapOrdersReviewAccept,
			want:       true,
		},
		{
			name:       "support cannot accept reviewed orders",
			roles:      []string{"support"},
			capability: CapOrdersReviewAccept,
			want:       false,
		},
		{
			name:       "support can list orders under review",
			roles:      []string{"support"},
			capability: CapReviewView,
			want:       true,
		},
		{
			name:       "marketing views the weight report",
			roles:      []string{"marketing"},
			capability: CapReportView,
			want:       true,
		},
		{
			name:       "marketing cannot edit orders",
			roles:      []string{"marketing"},
			capability: CapOrdersEdit,
			want:       false,
		},
		{
			name:       "combined roles inherit union of capabilities",
			roles:      []string{"support", "marketing"},
			capability: CapReportView,
			want:       true,
		},
		{
			name:       "unknown role grants nothing",
			roles:      []string{"unknown"},
			capability: CapReportView,
			want:       false,
		},
		{
			name:       "empty capability defaults to visible",
			roles:      []string{"support"},
			capability: Capability(""),
			want:       true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HasCapability(tc.roles, tc.capability); got != tc.want {
				t.Fatalf("HasCapability(%v, %q) = %v, want %v", tc.roles, tc.capability, got, tc.want)
			}
		})
	}
}

func TestCapabilitiesForRoles(t *testing.T) {
	t.Parallel()

	caps := CapabilitiesForRoles([]string{"support"})
	if caps[CapOrdersEdit] != true {
		t.Fatalf("support should have CapOrdersEdit")
	}
	if caps[CapReportView] {
		t.Fatalf("support must not have CapReportView")
	}
}
