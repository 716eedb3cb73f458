package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/security/auth"
)

// PrincipalContextKey keys the authenticated user in the request context.
type PrincipalContextKey struct{}

// Authentication is the per-request gate. It extracts a bearer token,
// validates it and resolves the subject to a full user. Every failure path
// falls through as anonymous: public endpoints keep working with a missing
// or garbage token, and role gating rejects protected ones later. The gate
// itself never writes a response.
func Authentication(tm *auth.TokenManager, users domain.UserRepository, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := auth.ExtractBearer(authHeader)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, valid := tm.Validate(tokenString)
			if !valid {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(userID)
			if err != nil {
				log.Warn("token subject does not resolve to a user",
					slog.Int64("user_id", userID),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated user, or nil for anonymous
// requests.
func PrincipalFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(PrincipalContextKey{}).(*domain.User); ok {
		return u
	}
	return nil
}
