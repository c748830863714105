package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"lending-engine/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware guards the API with HMAC-signed bearer tokens issued
// by the auth handler. When auth is disabled in config it degrades to a
// passthrough so local development does not need a token.
func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validBearerToken(r, cfg.JWTSecret, logger) {
				http.Error(w, `{"error":{"message":"Unauthorized"}}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validBearerToken(r *http.Request, secret string, logger *slog.Logger) bool {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Warn("Rejected request without Authorization header", "path", r.URL.Path)
		return false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		logger.Warn("Rejected malformed Authorization header", "path", r.URL.Path)
		return false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		logger.Warn("Rejected request with invalid token", "path", r.URL.Path, "error", err)
		return false
	}

	return true
}
