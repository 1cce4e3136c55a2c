package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	custommw "github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/ui"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/i18n"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/session"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/httpx"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
	"github.com/hitesht-krishaweb/woo-weight-report/public"
)

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address         string
	BasePath        string
	LoginPath       string
	Environment     string
	DefaultLanguage string

	Authenticator custommw.Authenticator
	Sessions      custommw.SessionStore
	CSRF          custommw.CSRFConfig
	Webhook       custommw.SignatureConfig
	Locales       *i18n.Bundle
	Pages         *ui.Pages
	Logger        *zap.Logger

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 60*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
	}, nil
}

// NewHandler builds the router. Pages is required.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Pages == nil {
		panic("httpserver: pages are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	locales := cfg.Locales
	if locales == nil {
		var err error
		if locales, err = i18n.Load(); err != nil {
			return nil, err
		}
	}

	sessions := cfg.Sessions
	if sessions == nil {
		manager, err := session.NewManager(session.Config{
			HashKey:      securecookie.GenerateRandomKey(32),
			CookieSecure: cfg.CSRF.Secure,
		})
		if err != nil {
			return nil, err
		}
		logger.Warn("session keys not configured; using ephemeral keys")
		sessions = manager
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.Trace())
	router.Use(observability.RequestLogger(logger))
	router.Use(observability.Recovery(logger))
	router.Use(chimw.Timeout(durationOr(cfg.RequestTimeout, 60*time.Second)))

	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, err
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteSuccess(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	router.With(custommw.RequireSignature(cfg.Webhook)).Post("/hooks/order-status", cfg.Pages.OrderStatusHook)

	basePath := normalizeBasePath(cfg.BasePath)
	csrfCfg := cfg.CSRF
	csrfCfg.CookiePath = firstNonEmpty(csrfCfg.CookiePath, basePath)

	mountAdminRoutes(router, basePath, routeOptions{
		Authenticator:   cfg.Authenticator,
		LoginPath:       cfg.LoginPath,
		Environment:     cfg.Environment,
		DefaultLanguage: cfg.DefaultLanguage,
		Sessions:        sessions,
		CSRF:            csrfCfg,
		Locales:         locales,
		Pages:           cfg.Pages,
	})

	return router, nil
}

type routeOptions struct {
	Authenticator   custommw.Authenticator
	LoginPath       string
	Environment     string
	DefaultLanguage string
	Sessions        custommw.SessionStore
	CSRF            custommw.CSRFConfig
	Locales         *i18n.Bundle
	Pages           ui.AdminPages
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions) {
	reportPath := strings.TrimRight(base, "/") + "/report"

	router.Route(base, func(r chi.Router) {
		r.Use(custommw.RequestInfoMiddleware(base, opts.Environment))
		r.Use(custommw.Locale(opts.Locales, opts.DefaultLanguage))
		r.Use(custommw.AJAX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.Auth(opts.Authenticator, opts.LoginPath))
		r.Use(custommw.CSRF(opts.CSRF))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, reportPath, http.StatusFound)
		})
		opts.Pages.RegisterMenu(r)
	})
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}
