package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ajaxContextKey struct{}

// AJAXInfo captures how the current request was issued by the admin scripts.
type AJAXInfo struct {
	IsAJAX    bool
	WantsJSON bool
}

// AJAX inspects X-Requested-With and Accept headers and annotates the context.
func AJAX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := AJAXInfo{
				IsAJAX:    strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest"),
				WantsJSON: strings.Contains(strings.ToLower(r.Header.Get("Accept")), "application/json"),
			}
			ctx := context.WithValue(r.Context(), ajaxContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AJAXInfoFromContext retrieves AJAX metadata; returns zero value if absent.
func AJAXInfoFromContext(ctx context.Context) AJAXInfo {
	info, _ := ctx.Value(ajaxContextKey{}).(AJAXInfo)
	return info
}

// WantsJSON reports whether failures should be answered with the JSON envelope.
func WantsJSON(ctx context.Context) bool {
	info := AJAXInfoFromContext(ctx)
	return info.IsAJAX || info.WantsJSON
}

// NoStore disables caching of admin responses.
func NoStore() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store, max-age=0")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Add("Vary", "X-Requested-With")
			next.ServeHTTP(w, r)
		})
	}
}
