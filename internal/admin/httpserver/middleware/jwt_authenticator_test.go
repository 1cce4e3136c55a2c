package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTAuthenticatorAcceptsValidToken(t *testing.T) {
	auth := NewJWTAuthenticator("s3cret", "https://shop.example")
	token := signTestToken(t, "s3cret", jwt.MapClaims{
		"sub":   "42",
		"iss":   "https://shop.example",
		"email": "manager@shop.example",
		"roles": []string{"ops"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	user, err := auth.Authenticate(httptest.NewRequest("GET", "/", nil), token)
	require.NoError(t, err)
	require.Equal(t, "42", user.UID)
	require.Equal(t, "manager@shop.example", user.Email)
	require.Equal(t, []string{"ops"}, user.Roles)
}

func TestJWTAuthenticatorRejections(t *testing.T) {
	auth := NewJWTAuthenticator("s3cret", "https://shop.example")
	req := httptest.NewRequest("GET", "/", nil)

	cases := map[string]struct {
		token  string
		reason string
	}{
		"expired": {
			token:  signTestToken(t, "s3cret", jwt.MapClaims{"sub": "1", "iss": "https://shop.example", "exp": time.Now().Add(-time.Hour).Unix()}),
			reason: ReasonTokenExpired,
		},
		"wrong secret": {
			token:  signTestToken(t, "other", jwt.MapClaims{"sub": "1", "iss": "https://shop.example"}),
			reason: ReasonTokenInvalid,
		},
		"wrong issuer": {
			token:  signTestToken(t, "s3cret", jwt.MapClaims{"sub": "1", "iss": "https://evil.example"}),
			reason: ReasonTokenInvalid,
		},
		"missing subject": {
			token:  signTestToken(t, "s3cret", jwt.MapClaims{"iss": "https://shop.example"}),
			reason: ReasonTokenInvalid,
		},
		"blank": {
			token:  " ",
			reason: ReasonMissingToken,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Authenticate(req, tc.token)
			var authErr *AuthError
			require.True(t, errors.As(err, &authErr), "expected AuthError, got %v", err)
			require.Equal(t, tc.reason, authErr.Reason)
		})
	}
}
