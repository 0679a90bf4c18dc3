package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/maragia/motalk-server/internal/model"
)

var errNoBearer = errors.New("auth: missing or malformed Authorization header")

// contextKey is an unexported type for context keys in this package, so
// only this package can read or write the principal in a request context.
type contextKey string

const principalKey contextKey = "principal"

// RequireAuth enforces authentication on protected routes.
//
// It reads the session token from the "Authorization: Bearer <token>"
// header, verifies it, and stores the principal in the request context.
// Missing, malformed, invalid, and expired tokens all reject with 403 and
// stop the chain — protected handlers never run unauthenticated.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := extractPrincipal(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"forbidden","message":"valid authentication token required"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces that the authenticated principal holds the given
// role. Admins pass every role check; a role of "admin" admits admins only.
// Must run after RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, `{"error":"forbidden","message":"valid authentication token required"}`, http.StatusForbidden)
				return
			}
			if principal.Role != role && principal.Role != model.RoleAdmin {
				http.Error(w, `{"error":"forbidden","message":"you do not have permission to access this resource"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits only principals whose role is admin.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// PrincipalFromContext retrieves the authenticated principal set by
// RequireAuth. Returns (nil, false) on unauthenticated requests.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// extractPrincipal reads and verifies the bearer token from the
// Authorization header.
func extractPrincipal(r *http.Request, tokens *TokenService) (*Principal, error) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, errNoBearer
	}

	return tokens.Verify(parts[1])
}
