// Package auth provides the token-to-user verifier the rest of the server
// treats as an external collaborator (push handshake and HTTP bearer auth
// both depend only on the Verify method). Token issuance itself is out of
// scope; this package supplies a static bearer-token registry, the simplest
// implementation that satisfies both call sites, grounded on the teacher's
// middleware.AuthConfig API-key-to-user map.
package auth

import (
	"context"
	"sync"

	"github.com/noteflow/syncserver/internal/domain"
)

// TokenVerifier resolves a bearer token to a user ID against a static,
// in-memory registry. Both the Connection Supervisor's auth frame and the
// HTTP API's Authorization header use this same verifier.
type TokenVerifier struct {
	mu     sync.RWMutex
	tokens map[string]int64
}

// NewTokenVerifier builds a verifier from an initial token -> userID map.
// A nil map starts the registry empty.
func NewTokenVerifier(tokens map[string]int64) *TokenVerifier {
	v := &TokenVerifier{tokens: make(map[string]int64, len(tokens))}
	for k, id := range tokens {
		v.tokens[k] = id
	}
	return v
}

// Verify implements realtime.Verifier and is also used directly by the HTTP
// auth middleware.
func (v *TokenVerifier) Verify(_ context.Context, token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrAuthFailed
	}
	v.mu.RLock()
	userID, ok := v.tokens[token]
	v.mu.RUnlock()
	if !ok {
		return 0, domain.ErrAuthFailed
	}
	return userID, nil
}

// Register adds or replaces a token's mapped user, used by operator tooling
// and tests to provision credentials without a restart.
func (v *TokenVerifier) Register(token string, userID int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token] = userID
}

// Revoke removes a token, invalidating it for both transports.
func (v *TokenVerifier) Revoke(token string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tokens, token)
}
