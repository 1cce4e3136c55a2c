package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":3051" {
		t.Errorf("expected default address :3051, got %s", cfg.Server.Address)
	}
	if cfg.Server.BasePath != "/admin" {
		t.Errorf("expected default base path /admin, got %s", cfg.Server.BasePath)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("expected memory driver, got %s", cfg.Store.Driver)
	}
	if cfg.Report.Location != time.UTC {
		t.Errorf("expected UTC location, got %v", cfg.Report.Location)
	}
	if cfg.Report.DefaultPageSize != 20 {
		t.Errorf("unexpected default page size: %d", cfg.Report.DefaultPageSize)
	}
	if !cfg.PDF.Enabled || cfg.PDF.Orientation != "L" {
		t.Errorf("unexpected pdf defaults: %+v", cfg.PDF)
	}
	if cfg.Webhooks.SignatureHeader != "X-Signature" || cfg.Webhooks.ClockSkew != 5*time.Minute {
		t.Errorf("unexpected webhook defaults: %+v", cfg.Webhooks)
	}
}

func TestLoadOverridesFromMap(t *testing.T) {
	env := map[string]string{
		"WEIGHTREPORT_HTTP_ADDR":         ":9000",
		"WEIGHTREPORT_STORE_DRIVER":      "MySQL",
		"WEIGHTREPORT_STORE_DSN":         "user:pass@tcp(localhost:3306)/shop?parseTime=true",
		"WEIGHTREPORT_TIMEZONE":          "Asia/Tokyo",
		"WEIGHTREPORT_DEFAULT_PAGE_SIZE": "50",
		"WEIGHTREPORT_PDF_ORIENTATION":   "p",
		"WEIGHTREPORT_PDF_FONT_SIZE":     "7.5",
		"WEIGHTREPORT_SESSION_SECURE":    "yes",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":9000" {
		t.Errorf("expected address override, got %s", cfg.Server.Address)
	}
	if cfg.Store.Driver != DriverMySQL {
		t.Errorf("expected lower-cased driver, got %s", cfg.Store.Driver)
	}
	if cfg.Report.Location == nil || cfg.Report.Location.String() != "Asia/Tokyo" {
		t.Errorf("expected Asia/Tokyo location, got %v", cfg.Report.Location)
	}
	if cfg.Report.DefaultPageSize != 50 {
		t.Errorf("expected page size 50, got %d", cfg.Report.DefaultPageSize)
	}
	if cfg.PDF.Orientation != "P" || cfg.PDF.FontSize != 7.5 {
		t.Errorf("unexpected pdf config: %+v", cfg.PDF)
	}
	if !cfg.Session.Secure {
		t.Errorf("expected secure session cookie")
	}
}

func TestLoadFirestoreProjectFallsBackToFirebase(t *testing.T) {
	env := map[string]string{
		"WEIGHTREPORT_STORE_DRIVER":        "firestore",
		"WEIGHTREPORT_FIREBASE_PROJECT_ID": "shop-prod",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.FirestoreProjectID != "shop-prod" {
		t.Errorf("expected firestore project fallback, got %q", cfg.Store.FirestoreProjectID)
	}
}

func TestLoadLoginPathAndPDFFont(t *testing.T) {
	font := filepath.Join(t.TempDir(), "NotoSansJP-Regular.ttf")
	if err := os.WriteFile(font, []byte("ttf"), 0o600); err != nil {
		t.Fatalf("write font: %v", err)
	}
	env := map[string]string{
		"WEIGHTREPORT_LOGIN_PATH":    "/login",
		"WEIGHTREPORT_PDF_FONT_FILE": font,
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.LoginPath != "/login" {
		t.Errorf("expected login path override, got %q", cfg.Server.LoginPath)
	}
	if cfg.PDF.FontFile != font {
		t.Errorf("expected font file %s, got %q", font, cfg.PDF.FontFile)
	}
}

func TestLoadValidationError(t *testing.T) {
	env := map[string]string{
		"WEIGHTREPORT_STORE_DRIVER":      "postgres",
		"WEIGHTREPORT_TIMEZONE":          "Mars/Olympus",
		"WEIGHTREPORT_DEFAULT_PAGE_SIZE": "0",
		"WEIGHTREPORT_SESSION_BLOCK_KEY": "short",
		"WEIGHTREPORT_LOGIN_PATH":        "login",
		"WEIGHTREPORT_PDF_FONT_FILE":     "/nonexistent/font.ttf",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	want := map[string]bool{
		"Store.DSN":              true,
		"Report.Timezone":        true,
		"Report.DefaultPageSize": true,
		"Session.BlockKey":       true,
		"Server.LoginPath":       true,
		"PDF.FontFile":           true,
	}
	fields := vErr.Fields()
	if len(fields) != len(want) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	for _, field := range fields {
		if !want[field] {
			t.Errorf("unexpected invalid field %s", field)
		}
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nWEIGHTREPORT_LANGUAGE=ja\nexport WEIGHTREPORT_PDF_HEADER=\"Weight Report\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(path),
		WithEnvMap(map[string]string{"WEIGHTREPORT_LANGUAGE": "en"}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Report.Language != "en" {
		t.Errorf("expected env map to win over .env, got %s", cfg.Report.Language)
	}
	if cfg.PDF.Header != "Weight Report" {
		t.Errorf("expected header from .env, got %q", cfg.PDF.Header)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	if err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
