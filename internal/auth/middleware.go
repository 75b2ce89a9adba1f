package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"vincula/internal/response"
)

type contextKey struct{}

var claimsKey contextKey

type Middleware struct {
	manager *Manager
	logger  *zap.Logger
}

func NewMiddleware(manager *Manager, logger *zap.Logger) *Middleware {
	return &Middleware{
		manager: manager,
		logger:  logger,
	}
}

// RequireAuth rejects requests without a valid bearer token and stores
// the verified claims in the request context.
func (mw *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error(w, r, mw.logger, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := mw.manager.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.FromError(w, r, mw.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}
