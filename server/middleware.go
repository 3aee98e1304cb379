package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/edumanager/auth-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySubject stores the authenticated subject (email)
	ContextKeySubject ContextKey = "subject"
	// ContextKeyClaims stores the validated token claims
	ContextKeyClaims ContextKey = "claims"
)

// Protect is middleware that validates a Bearer access token before invoking
// the handler. Public paths pass straight through; everything else goes
// through the full Validator chain (signature, expiry, blacklist).
func (s *Server) Protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.guard.IsPublic(r.URL.Path) {
			next(w, r)
			return
		}

		tokenStr, ok := bearerToken(r)
		if !ok {
			writeError(w, errMissingBearer)
			return
		}

		claims, err := s.validator.Validate(r.Context(), tokenStr)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
		ctx = context.WithValue(ctx, ContextKeyClaims, claims)
		next(w, r.WithContext(ctx))
	}
}

// ClaimsFromContext returns the validated claims injected by Protect.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
