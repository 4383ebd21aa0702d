// internal/auth/middleware.go
// Bearer token middleware for the matching API

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logging"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// Middleware verifies access tokens issued by the auth service
type Middleware struct {
	secret string
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{secret: jwtSecret}
}

// Authenticate protects routes. It verifies the JWT and puts the user ID in
// the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Extract token from Authorization header
		token := extractToken(r)
		if token == "" {
			utils.ErrorResponse(w, "Missing or invalid authorization header", http.StatusUnauthorized)
			return
		}

		// 2. Validate token
		claims, err := utils.ValidateJWT(token, m.secret)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected bearer token")
			utils.ErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		// 3. Refresh tokens are not accepted here
		if claims.Type != utils.TokenTypeAccess {
			utils.ErrorResponse(w, "Invalid token type", http.StatusUnauthorized)
			return
		}

		// 4. Add user to request context
		ctx := WithUserID(r.Context(), claims.UserID)
		ctx = logging.ContextWithUserID(ctx, claims.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken supports the "Bearer <token>" format
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}

// WithUserID stores the authenticated user ID
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
