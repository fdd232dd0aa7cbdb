// Package middleware provides the HTTP middleware chain: tracing,
// security headers, and the authentication/authorization gates.
package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/trekora/trek-api/internal/api/shared"
	"github.com/trekora/trek-api/internal/domain"
	"github.com/trekora/trek-api/internal/platform/logger"
	"github.com/trekora/trek-api/internal/service/auth"
	"github.com/trekora/trek-api/internal/store"
)

// AuthMiddleware is the authentication gate: it verifies the bearer
// token, resolves the owning user, rejects stale tokens, and attaches
// the principal to the request context.
type AuthMiddleware struct {
	tokens auth.TokenService
	users  store.UserStore
}

// NewAuthMiddleware creates an AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokens auth.TokenService, users store.UserStore) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Authenticate terminates the request with 401 on the first failed
// step; on success downstream handlers find the user via
// shared.Principal.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The scheme prefix must match exactly, case-sensitive.
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized,
				"You are not logged in. Please log in to get access.")
			return
		}

		claims, err := m.tokens.Validate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized,
					"Your token has expired. Please log in again.")
			case errors.Is(err, auth.ErrInvalidToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized,
					"Invalid token. Please log in again.")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Authentication error", err)
			}
			return
		}

		user, err := m.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithError(w, r, http.StatusUnauthorized,
					"The user belonging to this token no longer exists.")
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Authentication error", err)
			return
		}

		if user.ChangedPasswordAfter(claims.IssuedAt) {
			logger.FromContext(r.Context()).Debug("rejected stale token",
				"user_id", user.ID, "issued_at", claims.IssuedAt)
			shared.RespondWithError(w, r, http.StatusUnauthorized,
				"Password was changed recently. Please log in again.")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithPrincipal(r.Context(), user)))
	})
}

// RequireRole is the authorization gate: a pure predicate over the
// already-resolved principal's role against an explicit allow-list.
func RequireRole(allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := shared.Principal(r.Context())
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized,
					"You are not logged in. Please log in to get access.")
				return
			}

			if !slices.Contains(allowed, user.Role) {
				shared.RespondWithError(w, r, http.StatusForbidden,
					"You do not have permission to perform this action.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
