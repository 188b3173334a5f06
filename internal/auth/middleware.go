package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/taiwoajasa245/confession-api/pkg/response"
	"github.com/taiwoajasa245/confession-api/pkg/util"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// AdminMiddleware only lets through requests carrying a valid bearer token
// whose role is admin.
func AdminMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, http.StatusUnauthorized, "Missing Authorization header", "admin token required")
				return
			}

			// Must start with "Bearer "
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "Invalid token format", "")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := util.ValidateJWT(secret, tokenStr)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token", "")
				return
			}

			if claims.Role != util.RoleAdmin {
				response.Error(w, http.StatusForbidden, "Forbidden", "admin role required")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaimsFromContext(r *http.Request) (*util.Claims, bool) {
	claims, ok := r.Context().Value(claimsContextKey).(*util.Claims)
	return claims, ok
}
