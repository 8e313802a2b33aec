package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// ClaimsKey is the context key for verified operator claims.
const ClaimsKey contextKey = "claims"

// ErrorResponse is the body of every auth failure.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ClaimsFromContext returns the claims stored by AuthMiddleware, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*Claims); ok {
		return claims
	}
	return nil
}

func sendErrorResponse(w http.ResponseWriter, message, code string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

// validateTokenFormat performs basic token format validation
func validateTokenFormat(tokenString string) error {
	if len(tokenString) == 0 {
		return errors.New("token cannot be empty")
	}
	if len(tokenString) > 8192 {
		return errors.New("token size exceeds maximum allowed")
	}
	if len(strings.Split(tokenString, ".")) != 3 {
		return errors.New("invalid JWT token format")
	}
	return nil
}

// AuthMiddleware requires a valid bearer token and stores its claims in the
// request context.
func AuthMiddleware(jwtManager *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				sendErrorResponse(w, "Authorization header required", "MISSING_AUTH_HEADER", http.StatusUnauthorized)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				sendErrorResponse(w, "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if err := validateTokenFormat(tokenString); err != nil {
				sendErrorResponse(w, "Invalid token format: "+err.Error(), "INVALID_TOKEN_FORMAT", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.ValidateToken(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					sendErrorResponse(w, "Token has expired", "TOKEN_EXPIRED", http.StatusUnauthorized)
				case errors.Is(err, jwt.ErrTokenMalformed):
					sendErrorResponse(w, "Token is malformed", "MALFORMED_TOKEN", http.StatusUnauthorized)
				default:
					sendErrorResponse(w, "Invalid or expired token", "INVALID_TOKEN", http.StatusUnauthorized)
				}
				return
			}
			if claims.Subject == "" {
				sendErrorResponse(w, "Token has no subject", "INVALID_SUBJECT", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MustRole rejects requests whose claims carry none of requiredRoles.
func MustRole(requiredRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				sendErrorResponse(w, "Authentication required", "AUTHENTICATION_REQUIRED", http.StatusUnauthorized)
				return
			}
			if !claims.HasRole(requiredRoles...) {
				sendErrorResponse(w, "Insufficient permissions", "INSUFFICIENT_PERMISSIONS", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
