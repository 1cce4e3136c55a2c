package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// JWTAuthenticator validates HS256 bearer tokens minted by the storefront
// (for example by a WordPress SSO bridge) and maps their claims onto a User.
type JWTAuthenticator struct {
	secret []byte
	issuer string
}

// NewJWTAuthenticator constructs an authenticator for tokens signed with secret.
// An empty issuer disables the issuer check.
func NewJWTAuthenticator(secret, issuer string) *JWTAuthenticator {
	if strings.TrimSpace(secret) == "" {
		panic("jwt secret is required")
	}
	return &JWTAuthenticator{secret: []byte(secret), issuer: strings.TrimSpace(issuer)}
}

// Authenticate parses and verifies the token.
func (a *JWTAuthenticator) Authenticate(_ *http.Request, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, NewAuthError(ReasonMissingToken, ErrUnauthorized)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, NewAuthError(ReasonTokenExpired, err)
		}
		return nil, NewAuthError(ReasonTokenInvalid, err)
	}

	if a.issuer != "" && !claims.VerifyIssuer(a.issuer, true) {
		return nil, NewAuthError(ReasonTokenInvalid, fmt.Errorf("issuer mismatch: %v", claims["iss"]))
	}

	uid := claimString(claims["sub"])
	if uid == "" {
		return nil, NewAuthError(ReasonTokenInvalid, errors.New("subject claim missing"))
	}

	return &User{
		UID:   uid,
		Email: claimString(claims["email"]),
		Roles: claimStringSlice(claims["role"], claims["roles"]),
		Token: token,
	}, nil
}
