package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/httpx"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
)

const maxSignedBody = 64 << 10

// SignatureConfig configures webhook signature verification.
type SignatureConfig struct {
	Secret          string
	SignatureHeader string
	TimestampHeader string
	ClockSkew       time.Duration
	Now             func() time.Time
}

// RequireSignature verifies an HMAC-SHA256 signature over
// "<timestamp>.<body>" sent by the storefront. The body is restored for the
// next handler. Requests are rejected when no secret is configured.
func RequireSignature(cfg SignatureConfig) func(http.Handler) http.Handler {
	if cfg.SignatureHeader == "" {
		cfg.SignatureHeader = "X-Signature"
	}
	if cfg.TimestampHeader == "" {
		cfg.TimestampHeader = "X-Signature-Timestamp"
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	secret := []byte(cfg.Secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())
			reject := func(status int, reason string, err error) {
				logger.Warn("webhook signature rejected", zap.String("reason", reason), zap.Error(err))
				httpx.WriteError(r.Context(), w, httpx.NewError(reason, "signature verification failed", status))
			}

			if len(secret) == 0 {
				reject(http.StatusServiceUnavailable, "secret_not_configured", nil)
				return
			}

			rawTimestamp := strings.TrimSpace(r.Header.Get(cfg.TimestampHeader))
			timestamp, err := parseSignatureTimestamp(rawTimestamp)
			if err != nil {
				reject(http.StatusUnauthorized, "timestamp_invalid", err)
				return
			}
			if skew := cfg.Now().Sub(timestamp); skew > cfg.ClockSkew || skew < -cfg.ClockSkew {
				reject(http.StatusUnauthorized, "timestamp_skew", fmt.Errorf("skew %s", skew))
				return
			}

			signature, err := decodeSignature(strings.TrimSpace(r.Header.Get(cfg.SignatureHeader)))
			if err != nil {
				reject(http.StatusUnauthorized, "signature_invalid", err)
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				reject(http.StatusBadRequest, "invalid_body", err)
				return
			}

			if !hmac.Equal(signature, SignPayload(secret, rawTimestamp, body)) {
				reject(http.StatusUnauthorized, "signature_mismatch", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SignPayload computes the expected signature for a timestamp and body.
func SignPayload(secret []byte, timestamp string, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	return mac.Sum(nil)
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxSignedBody+1))
	if err != nil {
		return nil, err
	}
	if len(buf) > maxSignedBody {
		return nil, errors.New("body too large")
	}
	r.Body = io.NopCloser(bytes.NewReader(buf))
	return buf, nil
}

func decodeSignature(value string) ([]byte, error) {
	value = strings.TrimPrefix(value, "sha256=")
	if value == "" {
		return nil, errors.New("empty signature")
	}
	if decoded, err := hex.DecodeString(value); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil {
		return decoded, nil
	}
	return nil, errors.New("signature must be hex or base64 encoded")
}

func parseSignatureTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("timestamp empty")
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC(), nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp %q", value)
}
