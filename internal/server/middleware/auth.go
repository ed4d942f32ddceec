package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

type contextKey string

const roleKey contextKey = "role"

// TokenValidator verifies a bearer token and returns the role claim it
// carries.
type TokenValidator interface {
	ValidateToken(token string) (role string, err error)
}

// RequireAuth rejects requests that lack a valid bearer token. The
// validated role is stored on the request context for handlers.
func RequireAuth(validator TokenValidator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "missing or malformed Authorization header")
			return
		}

		role, err := validator.ValidateToken(token)
		if err != nil {
			log.Printf("[auth] token rejected: %v", err)
			writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleFromContext returns the role set by RequireAuth, if any.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <tok>"
// header. The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", false
	}
	return fields[1], true
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
