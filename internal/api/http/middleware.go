package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/tobiasgatti02/Tolio-sub002/internal/security"
)

type contextKey string

const partyIDKey contextKey = "party_id"

// PartyFromContext returns the authenticated party id set by AuthMiddleware.
func PartyFromContext(ctx context.Context) (string, bool) {
	party, ok := ctx.Value(partyIDKey).(string)
	return party, ok && party != ""
}

// AuthMiddleware validates the bearer token and injects the caller's
// party id into the request context. The handlers pass that id into the
// engine as the caller; role checks happen inside the engine per deal.
func AuthMiddleware(tm security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}

			claims, err := tm.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), partyIDKey, claims.PartyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminKeyMiddleware guards the asset registry admin endpoints with the
// configured shared key.
func AdminKeyMiddleware(checker *security.AdminKeyChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := checker.Check(r.Header.Get("X-Admin-Key")); err != nil {
				jsonError(w, http.StatusForbidden, "unauthorized", "invalid admin key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
