package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/grovetrack/importflow/internal/config"
	"github.com/grovetrack/importflow/internal/models"
	"github.com/grovetrack/importflow/internal/utils"
)

type contextKey string

// UserContextKey holds the validated JWT claims of the request
const UserContextKey contextKey = "user"

// Auth verifies Bearer JWT tokens and stores the claims in the context
func Auth(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Must run behind Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ClaimsFrom(r).Role() != models.RoleAdmin {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Claims wraps the JWT claims stored in the request context
type Claims jwt.MapClaims

// ClaimsFrom extracts the validated claims from the request context
func ClaimsFrom(r *http.Request) Claims {
	if c, ok := r.Context().Value(UserContextKey).(jwt.MapClaims); ok {
		return Claims(c)
	}
	return nil
}

func (c Claims) str(key string) string {
	if c == nil {
		return ""
	}
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

// Role returns the role claim
func (c Claims) Role() string { return c.str("role") }

// Email returns the email claim
func (c Claims) Email() string { return c.str("email") }

// Supplier returns the supplier claim (empty for staff users)
func (c Claims) Supplier() string { return c.str("supplier") }
