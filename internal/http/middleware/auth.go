// Package middleware holds the API's own HTTP middleware.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/pfm/internal/credential"
	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
)

type TokenVerifier interface {
	Verify(token string) (*credential.Claims, error)
}

type claimsKey struct{}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the token's claims in the request context.
func Authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				respond.Error(w, http.StatusUnauthorized, "Not authorized, no token provided")
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "Not authorized, invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, claims *credential.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func ClaimsFrom(ctx context.Context) (*credential.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*credential.Claims)
	return claims, ok
}

// Email returns the authenticated account's email, or "" outside
// Authenticate.
func Email(ctx context.Context) string {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return ""
	}

	return claims.Email
}
