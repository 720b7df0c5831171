package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/auth"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/repository"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/httputil"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "session_claims"

// ClaimsFromContext returns the session claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*auth.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.SessionClaims)
	return claims, ok
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Guard carries the dependencies for the auth middlewares.
type Guard struct {
	tokens   *auth.TokenManager
	userRepo repository.UserRepository
}

// NewGuard creates the guard middleware set.
func NewGuard(tokens *auth.TokenManager, userRepo repository.UserRepository) *Guard {
	return &Guard{tokens: tokens, userRepo: userRepo}
}

// Authenticate verifies the bearer access token and stores its claims in the
// request context. It is purely stateless; no directory lookup happens here.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.tokens.VerifyAccess(bearerToken(r))
		if err != nil {
			httputil.WriteError(w, r, apperrors.InvalidToken(), nil)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = logger.WithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only users whose CURRENT directory role is in the
// allowed set. The token is re-verified and the user re-read from the
// directory on every request, so a role change or deactivation takes effect
// immediately, before any issued token expires. Fail closed: any lookup
// problem denies the request.
func (g *Guard) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	// An empty role set declares no restriction and passes through;
	// authentication still applies via the Authenticate middleware.
	if len(roles) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Independent verification; this guard must hold even if
			// Authenticate was bypassed by a misconfigured route.
			claims, err := g.tokens.VerifyAccess(bearerToken(r))
			if err != nil {
				httputil.WriteError(w, r, apperrors.InvalidToken(), nil)
				return
			}

			user, err := g.userRepo.GetByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					httputil.WriteError(w, r, apperrors.Forbidden("access denied"), nil)
					return
				}
				httputil.WriteError(w, r, apperrors.Internal(err), nil)
				return
			}

			if !user.IsActive() {
				httputil.WriteError(w, r, apperrors.Forbidden("account is disabled"), nil)
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				httputil.WriteError(w, r, apperrors.Forbidden("insufficient role"), nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for RequireRoles(admin).
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return g.RequireRoles(domain.RoleAdmin)(next)
}
