package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/spicehouse/menu-service/pkg/auth"
)

type contextKey string

// UsernameKey carries the authenticated username through the request context
const UsernameKey contextKey = "username"

// CookieName is the HTTP-only cookie set on login
const CookieName = "jwt_token"

// TokenFromRequest extracts the credential from the Authorization header,
// falling back to the jwt_token cookie. One extraction path for every
// protected route.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Auth returns a middleware validating the signed credential and storing
// the embedded username in the request context.
func Auth(tokens *auth.Manager) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "Token is missing", "unauthorized")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					respondError(w, http.StatusUnauthorized, "Expired token.", "unauthenticated")
					return
				}
				respondError(w, http.StatusUnauthorized, "Invalid token", "unauthenticated")
				return
			}

			ctx := context.WithValue(r.Context(), UsernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// Username returns the authenticated username stored by Auth.
func Username(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

func respondError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
