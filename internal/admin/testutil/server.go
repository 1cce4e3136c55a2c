package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/ui"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/pdf"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/session"
)

// WebhookSecret signs status events in tests.
const WebhookSecret = "test-webhook-secret"

// ServerConfig is assembled by NewServer before the handler is built.
type ServerConfig struct {
	HTTP  httpserver.Config
	Store orders.Store
	Now   func() time.Time
	PDF   bool
}

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*ServerConfig)

// WithAuthenticator overrides the authenticator used by the admin server.
func WithAuthenticator(auth middleware.Authenticator) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.HTTP.Authenticator = auth
	}
}

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.HTTP.BasePath = path
	}
}

// WithLoginPath makes unauthenticated page requests redirect to path.
func WithLoginPath(path string) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.HTTP.LoginPath = path
	}
}

// WithStore wires a custom order store.
func WithStore(store orders.Store) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.Store = store
	}
}

// WithClock fixes the clock used by date presets and exports.
func WithClock(now func() time.Time) ServerOption {
	return func(cfg *ServerConfig) {
		cfg.Now = now
	}
}

// WithoutPDF disables the PDF export.
func WithoutPDF() ServerOption {
	return func(cfg *ServerConfig) {
		cfg.PDF = false
	}
}

// NewServer constructs an httptest server running the admin HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := ServerConfig{
		HTTP: httpserver.Config{
			Address:         ":0",
			BasePath:        "/admin",
			LoginPath:       "",
			Environment:     "Test",
			DefaultLanguage: "en",
			Authenticator:   middleware.DefaultAuthenticator(),
			CSRF: middleware.CSRFConfig{
				CookieName: "csrf_token",
				HeaderName: "X-CSRF-Token",
			},
			Webhook: middleware.SignatureConfig{Secret: WebhookSecret},
		},
		Now: time.Now,
		PDF: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Store == nil {
		cfg.Store = orders.NewSampleStore(cfg.Now())
	}

	manager, err := session.NewManager(session.Config{
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	cfg.HTTP.Sessions = manager

	deps := ui.Dependencies{Store: cfg.Store, Now: cfg.Now}
	if cfg.PDF {
		deps.Renderer = pdf.NewRenderer(pdf.Config{})
	}
	cfg.HTTP.Pages = ui.NewPages(deps)

	handler, err := httpserver.NewHandler(cfg.HTTP)
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}
