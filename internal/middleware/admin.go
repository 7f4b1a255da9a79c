package middleware

import (
	"net/http"

	"github.com/campusmarket/backend/internal/contextkeys"
	"github.com/campusmarket/backend/internal/handler"
)

// AdminOnly middleware ensures the caller has the 'admin' role.
// Must be used AFTER Auth middleware which sets contextkeys.SellerRole.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(contextkeys.SellerRole).(string)
		if !ok || role != "admin" {
			handler.JSON(w, http.StatusForbidden, map[string]string{"error": "forbidden: admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
