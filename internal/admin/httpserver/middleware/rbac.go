package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/i18n"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/admin/rbac"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/httpx"
	"github.com/hitesht-krishaweb/woo-weight-report/internal/platform/observability"
)

// RequireCapability aborts the request when the authenticated user lacks the required capability.
func RequireCapability(capability rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !rbac.HasCapability(user.Roles, capability) {
				forbidden(w, r, capability)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forbidden answers AJAX callers with {"success":false,"data":{"message":"Unauthorized"}}.
func forbidden(w http.ResponseWriter, r *http.Request, capability rbac.Capability) {
	observability.FromContext(r.Context()).Info("capability denied", zap.String("capability", string(capability)))
	message := i18n.T(r.Context(), "error.unauthorized")
	if WantsJSON(r.Context()) {
		httpx.WriteError(r.Context(), w, httpx.NewError("forbidden", message, http.StatusForbidden))
		return
	}
	http.Error(w, message, http.StatusForbidden)
}
