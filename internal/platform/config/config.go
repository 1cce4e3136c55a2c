package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPrefix = "WEIGHTREPORT_"

	defaultEnvFile         = ".env"
	defaultAddress         = ":3051"
	defaultBasePath        = "/admin"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultRequestTimeout  = 60 * time.Second
	defaultEnvironment     = "local"
	defaultLogLevel        = "info"
	defaultSessionCookie   = "weightreport_session"
	defaultSessionIdle     = 30 * time.Minute
	defaultCSRFCookie      = "weightreport_csrf"
	defaultCSRFHeader      = "X-CSRF-Token"
	defaultStoreDriver     = "memory"
	defaultTimezone        = "UTC"
	defaultPageSize        = 20
	defaultLanguage        = "en"
	defaultPDFOrientation  = "L"
	defaultPDFPageSize     = "A4"
	defaultPDFFontSize     = 9
	defaultPDFMargin       = 10
	defaultWebhookSkew     = 5 * time.Minute
	defaultWebhookSigHdr   = "X-Signature"
	defaultWebhookTimeHdr  = "X-Signature-Timestamp"
	maxPageSize            = 999
	minSessionHashKeyBytes = 32
)

// Store drivers understood by the server.
const (
	DriverMemory    = "memory"
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverFirestore = "firestore"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Auth        AuthConfig
	Session     SessionConfig
	CSRF        CSRFConfig
	Store       StoreConfig
	Report      ReportConfig
	PDF         PDFConfig
	Webhooks    WebhookConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Address  string
	BasePath string
	// LoginPath receives unauthenticated page requests; empty answers 401.
	LoginPath      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// AuthConfig selects the authenticator. Firebase wins over JWT when both are set.
type AuthConfig struct {
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	JWTSecret               string
	JWTIssuer               string
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	CookieName  string
	HashKey     string
	BlockKey    string
	Secure      bool
	IdleTimeout time.Duration
}

// CSRFConfig controls the double-submit token.
type CSRFConfig struct {
	CookieName string
	HeaderName string
	Secure     bool
}

// StoreConfig selects the commerce data backend.
type StoreConfig struct {
	Driver             string
	DSN                string
	FirestoreProjectID string
	AutoMigrate        bool
	Seed               bool
}

// ReportConfig tunes the weight report.
type ReportConfig struct {
	Timezone        string
	Location        *time.Location
	DefaultPageSize int
	Language        string
	LabelsFile      string
}

// PDFConfig tunes the PDF export.
type PDFConfig struct {
	Enabled     bool
	Orientation string
	PageSize    string
	FontSize    float64
	Margin      float64
	Header      string
	Footer      string
	// FontFile is a TrueType font used for non-Latin text such as Japanese labels.
	FontFile string
}

// WebhookConfig secures the order status webhook. An empty secret disables it.
type WebhookConfig struct {
	Secret          string
	SignatureHeader string
	TimestampHeader string
	ClockSkew       time.Duration
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, the .env file, the process
// environment and explicit overrides, in increasing order of precedence.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		key = envPrefix + key
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	cfg := Config{
		Environment: stringWithDefault(lookup, "ENVIRONMENT", defaultEnvironment),
		LogLevel:    stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
		Server: ServerConfig{
			Address:        stringWithDefault(lookup, "HTTP_ADDR", defaultAddress),
			BasePath:       stringWithDefault(lookup, "BASE_PATH", defaultBasePath),
			LoginPath:      stringWithDefault(lookup, "LOGIN_PATH", ""),
			ReadTimeout:    durationWithDefault(lookup, "READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		Auth: AuthConfig{
			FirebaseProjectID:       stringWithDefault(lookup, "FIREBASE_PROJECT_ID", ""),
			FirebaseCredentialsFile: stringWithDefault(lookup, "FIREBASE_CREDENTIALS_FILE", ""),
			JWTSecret:               stringWithDefault(lookup, "JWT_SECRET", ""),
			JWTIssuer:               stringWithDefault(lookup, "JWT_ISSUER", ""),
		},
		Session: SessionConfig{
			CookieName:  stringWithDefault(lookup, "SESSION_COOKIE", defaultSessionCookie),
			HashKey:     stringWithDefault(lookup, "SESSION_HASH_KEY", ""),
			BlockKey:    stringWithDefault(lookup, "SESSION_BLOCK_KEY", ""),
			Secure:      boolWithDefault(lookup, "SESSION_SECURE", false),
			IdleTimeout: durationWithDefault(lookup, "SESSION_IDLE_TIMEOUT", defaultSessionIdle),
		},
		CSRF: CSRFConfig{
			CookieName: stringWithDefault(lookup, "CSRF_COOKIE", defaultCSRFCookie),
			HeaderName: stringWithDefault(lookup, "CSRF_HEADER", defaultCSRFHeader),
			Secure:     boolWithDefault(lookup, "CSRF_SECURE", false),
		},
		Store: StoreConfig{
			Driver:             strings.ToLower(stringWithDefault(lookup, "STORE_DRIVER", defaultStoreDriver)),
			DSN:                stringWithDefault(lookup, "STORE_DSN", ""),
			FirestoreProjectID: stringWithDefault(lookup, "FIRESTORE_PROJECT_ID", ""),
			AutoMigrate:        boolWithDefault(lookup, "STORE_AUTO_MIGRATE", false),
			Seed:               boolWithDefault(lookup, "STORE_SEED", false),
		},
		Report: ReportConfig{
			Timezone:        stringWithDefault(lookup, "TIMEZONE", defaultTimezone),
			DefaultPageSize: intWithDefault(lookup, "DEFAULT_PAGE_SIZE", defaultPageSize),
			Language:        stringWithDefault(lookup, "LANGUAGE", defaultLanguage),
			LabelsFile:      stringWithDefault(lookup, "METAL_LABELS_FILE", ""),
		},
		PDF: PDFConfig{
			Enabled:     boolWithDefault(lookup, "PDF_ENABLED", true),
			Orientation: strings.ToUpper(stringWithDefault(lookup, "PDF_ORIENTATION", defaultPDFOrientation)),
			PageSize:    stringWithDefault(lookup, "PDF_PAGE_SIZE", defaultPDFPageSize),
			FontSize:    floatWithDefault(lookup, "PDF_FONT_SIZE", defaultPDFFontSize),
			Margin:      floatWithDefault(lookup, "PDF_MARGIN", defaultPDFMargin),
			Header:      stringWithDefault(lookup, "PDF_HEADER", ""),
			Footer:      stringWithDefault(lookup, "PDF_FOOTER", ""),
			FontFile:    stringWithDefault(lookup, "PDF_FONT_FILE", ""),
		},
		Webhooks: WebhookConfig{
			Secret:          stringWithDefault(lookup, "WEBHOOK_SECRET", ""),
			SignatureHeader: stringWithDefault(lookup, "WEBHOOK_SIGNATURE_HEADER", defaultWebhookSigHdr),
			TimestampHeader: stringWithDefault(lookup, "WEBHOOK_TIMESTAMP_HEADER", defaultWebhookTimeHdr),
			ClockSkew:       durationWithDefault(lookup, "WEBHOOK_CLOCK_SKEW", defaultWebhookSkew),
		},
	}

	if cfg.Store.Driver == DriverFirestore && cfg.Store.FirestoreProjectID == "" {
		cfg.Store.FirestoreProjectID = cfg.Auth.FirebaseProjectID
	}

	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var invalid []string

	if strings.TrimSpace(cfg.Server.Address) == "" {
		invalid = append(invalid, "Server.Address")
	}
	if !strings.HasPrefix(cfg.Server.BasePath, "/") {
		invalid = append(invalid, "Server.BasePath")
	}
	if login := cfg.Server.LoginPath; login != "" && !strings.HasPrefix(login, "/") && !strings.Contains(login, "://") {
		invalid = append(invalid, "Server.LoginPath")
	}

	switch cfg.Store.Driver {
	case DriverMemory:
	case DriverMySQL, DriverPostgres, DriverSQLite:
		if strings.TrimSpace(cfg.Store.DSN) == "" {
			invalid = append(invalid, "Store.DSN")
		}
	case DriverFirestore:
		if cfg.Store.FirestoreProjectID == "" {
			invalid = append(invalid, "Store.FirestoreProjectID")
		}
	default:
		invalid = append(invalid, "Store.Driver")
	}

	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		invalid = append(invalid, "Report.Timezone")
	} else {
		cfg.Report.Location = loc
	}
	if cfg.Report.DefaultPageSize < 1 || cfg.Report.DefaultPageSize > maxPageSize {
		invalid = append(invalid, "Report.DefaultPageSize")
	}

	if cfg.Session.HashKey != "" && len(cfg.Session.HashKey) < minSessionHashKeyBytes {
		invalid = append(invalid, "Session.HashKey")
	}
	switch len(cfg.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		invalid = append(invalid, "Session.BlockKey")
	}

	if cfg.PDF.Orientation != "L" && cfg.PDF.Orientation != "P" {
		invalid = append(invalid, "PDF.Orientation")
	}
	if cfg.PDF.FontSize <= 0 {
		invalid = append(invalid, "PDF.FontSize")
	}
	if cfg.PDF.Margin < 0 {
		invalid = append(invalid, "PDF.Margin")
	}
	if cfg.PDF.FontFile != "" {
		if info, err := os.Stat(cfg.PDF.FontFile); err != nil || info.IsDir() {
			invalid = append(invalid, "PDF.FontFile")
		}
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
