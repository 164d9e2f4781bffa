package middleware

import (
	"net/http"
	"slices"

	"github.com/crm-mobile-api/internal/domain"
)

// RequireRole returns middleware that allows access only to users holding one
// of the given CRM roles (e.g. domain.RoleSystemManager). The Administrator
// user always passes.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if claims.UserID == domain.UserAdministrator {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range allowedRoles {
				if slices.Contains(claims.Roles, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "forbidden")
		})
	}
}
