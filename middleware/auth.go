package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"shortearn/auth"

	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	emailKeyContextKey contextKey = "emailKey"
	emailContextKey    contextKey = "email"
)

// UserAuth validates JWT bearer tokens on protected routes.
type UserAuth struct {
	jwtManager *auth.JWTManager
}

func NewUserAuth(jwtManager *auth.JWTManager) *UserAuth {
	return &UserAuth{jwtManager: jwtManager}
}

// Protect returns a middleware that requires a valid access token.
func (ua *UserAuth) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Missing authorization token")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w, "Invalid authorization header format. Use: Bearer <token>")
			return
		}

		claims, err := ua.jwtManager.ValidateToken(parts[1])
		if err != nil {
			log.Warn().Err(err).Msg("Invalid token")
			unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), emailKeyContextKey, claims.EmailKey)
		ctx = context.WithValue(ctx, emailContextKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WithEmailKey returns a context carrying the authenticated user's storage
// key, exactly as Protect sets it.
func WithEmailKey(ctx context.Context, emailKey string) context.Context {
	return context.WithValue(ctx, emailKeyContextKey, emailKey)
}

// GetEmailKey extracts the authenticated user's storage key from the request.
func GetEmailKey(r *http.Request) string {
	emailKey, ok := r.Context().Value(emailKeyContextKey).(string)
	if !ok {
		return ""
	}
	return emailKey
}

// GetEmail extracts the authenticated user's email from the request.
func GetEmail(r *http.Request) string {
	email, ok := r.Context().Value(emailContextKey).(string)
	if !ok {
		return ""
	}
	return email
}
