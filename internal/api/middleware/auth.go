package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/noteflow/syncserver/internal/api/httpx"
)

// Verifier resolves a bearer token to a user ID. Satisfied by
// *auth.TokenVerifier; declared locally to keep this package's import graph
// narrow.
type Verifier interface {
	Verify(ctx context.Context, token string) (int64, error)
}

// Auth requires a "Bearer <token>" Authorization header on every route it
// wraps, resolving it through verifier and attaching the user ID to the
// request context (spec §6 "All routes require prior authentication except
// the push endpoint's handshake").
func Auth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(AuthorizationHeader)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpx.WriteValidationError(w, GetRequestID(r.Context()), "missing or malformed Authorization header")
				return
			}
			userID, err := verifier.Verify(r.Context(), token)
			if err != nil {
				httpx.WriteError(w, GetRequestID(r.Context()), http.StatusUnauthorized, err)
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, userID))
			next.ServeHTTP(w, r)
		})
	}
}

// UserID extracts the authenticated caller's user ID from ctx.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userContextKey).(int64)
	return id, ok
}
