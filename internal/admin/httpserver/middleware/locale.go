package middleware

import (
	"net/http"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/i18n"
)

// LocaleCookie remembers an explicit language choice made with ?lang=.
const LocaleCookie = "weightreport_lang"

// Locale resolves the UI language from ?lang=, the locale cookie,
// Accept-Language and the configured default, in that order, and stores the
// localizer on the request context.
func Locale(bundle *i18n.Bundle, fallback string) func(http.Handler) http.Handler {
	if bundle == nil {
		bundle = i18n.MustLoad()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			explicit := r.URL.Query().Get("lang")
			stored := ""
			if c, err := r.Cookie(LocaleCookie); err == nil {
				stored = c.Value
			}

			tag := bundle.Resolve(explicit, stored, r.Header.Get("Accept-Language"), fallback)
			if explicit != "" && tag.String() != stored {
				http.SetCookie(w, &http.Cookie{
					Name:     LocaleCookie,
					Value:    tag.String(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set("Content-Language", tag.String())

			ctx := i18n.WithLocalizer(r.Context(), bundle.Localizer(tag))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
