package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/flags"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/middleware"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/httpserver/ui"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders/firestorestore"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/orders/gormstore"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/paiddate"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/pdf"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/report"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/session"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/weights"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/config"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "weightreport: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ctx = observability.WithLogger(ctx, logger)

	var app *firebase.App
	if cfg.Auth.FirebaseProjectID != "" || cfg.Store.Driver == config.DriverFirestore {
		app, err = newFirebaseApp(ctx, cfg)
		if err != nil {
			return err
		}
	}

	store, closeStore, err := openStore(ctx, cfg, app, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	authenticator, err := buildAuthenticator(ctx, cfg, app, logger)
	if err != nil {
		return err
	}

	sessions, err := buildSessions(cfg)
	if err != nil {
		return err
	}

	catalog := weights.DefaultCatalog()
	if cfg.Report.LabelsFile != "" {
		catalog, err = weights.LoadCatalogFile(cfg.Report.LabelsFile)
		if err != nil {
			return err
		}
	}
	if !catalog.Covers(cfg.Report.Language) {
		logger.Warn("no metal labels for report language; using closest match",
			zap.String("language", cfg.Report.Language),
			zap.Stringers("available", catalog.Languages()),
		)
	}

	builder := report.NewBuilder(report.WithLocation(cfg.Report.Location))
	deps := ui.Dependencies{
		Store:           store,
		Aggregator:      report.NewAggregator(store, builder, catalog.Labels(cfg.Report.Language)),
		Tracker:         flags.NewTracker(store),
		Editor:          paiddate.NewEditor(store, cfg.Report.Location),
		Location:        cfg.Report.Location,
		DefaultPageSize: cfg.Report.DefaultPageSize,
	}
	if cfg.PDF.Enabled {
		deps.Renderer = pdf.NewRenderer(pdf.Config{
			Orientation: cfg.PDF.Orientation,
			PageSize:    cfg.PDF.PageSize,
			FontSize:    cfg.PDF.FontSize,
			Margin:      cfg.PDF.Margin,
			Header:      cfg.PDF.Header,
			Footer:      cfg.PDF.Footer,
			FontFile:    cfg.PDF.FontFile,
		})
		if cfg.PDF.FontFile == "" && cfg.Report.Language != "en" {
			logger.Warn("no PDF font file configured; non-Latin text will not render",
				zap.String("language", cfg.Report.Language))
		}
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:         cfg.Server.Address,
		BasePath:        cfg.Server.BasePath,
		LoginPath:       cfg.Server.LoginPath,
		Environment:     cfg.Environment,
		DefaultLanguage: cfg.Report.Language,
		Authenticator:   authenticator,
		Sessions:        sessions,
		CSRF: middleware.CSRFConfig{
			CookieName: cfg.CSRF.CookieName,
			HeaderName: cfg.CSRF.HeaderName,
			Secure:     cfg.CSRF.Secure,
		},
		Webhook: middleware.SignatureConfig{
			Secret:          cfg.Webhooks.Secret,
			SignatureHeader: cfg.Webhooks.SignatureHeader,
			TimestampHeader: cfg.Webhooks.TimestampHeader,
			ClockSkew:       cfg.Webhooks.ClockSkew,
		},
		Pages:          ui.NewPages(deps),
		Logger:         logger,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("weight report listening",
		zap.String("addr", cfg.Server.Address),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("store", cfg.Store.Driver),
		zap.String("environment", cfg.Environment),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("weight report stopped")
	return nil
}

func newFirebaseApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	projectID := cfg.Auth.FirebaseProjectID
	if projectID == "" {
		projectID = cfg.Store.FirestoreProjectID
	}
	var opts []option.ClientOption
	if cfg.Auth.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Auth.FirebaseCredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase app: %w", err)
	}
	return app, nil
}

func openStore(ctx context.Context, cfg config.Config, app *firebase.App, logger *zap.Logger) (orders.Store, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory sample orders")
		return orders.NewSampleStore(time.Now()).WithLocation(cfg.Report.Location), noop, nil

	case config.DriverFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("initialise firestore client: %w", err)
		}
		store := firestorestore.New(client, firestorestore.Config{
			Location: cfg.Report.Location,
			Logger:   logger,
		})
		return store, func() { closeFirestore(client, logger) }, nil

	default:
		db, err := gormstore.Open(cfg.Store.Driver, cfg.Store.DSN, logger)
		if err != nil {
			return nil, noop, err
		}
		store := gormstore.New(db).WithLocation(cfg.Report.Location)
		if cfg.Store.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				return nil, noop, err
			}
		}
		if cfg.Store.Seed {
			list, products := orders.SampleData(time.Now())
			if err := store.Seed(ctx, list, products); err != nil {
				return nil, noop, err
			}
			logger.Info("seeded sample orders", zap.Int("orders", len(list)))
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return store, closeDB, nil
	}
}

func closeFirestore(client *firestore.Client, logger *zap.Logger) {
	if err := client.Close(); err != nil {
		logger.Warn("close firestore client", zap.Error(err))
	}
}

func buildAuthenticator(ctx context.Context, cfg config.Config, app *firebase.App, logger *zap.Logger) (middleware.Authenticator, error) {
	switch {
	case cfg.Auth.FirebaseProjectID != "":
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialise firebase auth client: %w", err)
		}
		logger.Info("firebase authenticator enabled", zap.String("project", cfg.Auth.FirebaseProjectID))
		return middleware.NewFirebaseAuthenticator(client), nil
	case cfg.Auth.JWTSecret != "":
		logger.Info("jwt authenticator enabled", zap.String("issuer", cfg.Auth.JWTIssuer))
		return middleware.NewJWTAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer), nil
	default:
		logger.Warn("no authenticator configured; using development tokens")
		return middleware.DefaultAuthenticator(), nil
	}
}

// buildSessions returns nil when no hash key is configured; the server then
// signs sessions with a key generated at start-up.
func buildSessions(cfg config.Config) (middleware.SessionStore, error) {
	if cfg.Session.HashKey == "" {
		return nil, nil
	}
	manager, err := session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      []byte(cfg.Session.HashKey),
		BlockKey:     []byte(cfg.Session.BlockKey),
		CookieSecure: cfg.Session.Secure,
		IdleTimeout:  cfg.Session.IdleTimeout,
	})
	if err != nil {
		return nil, err
	}
	return manager, nil
}
