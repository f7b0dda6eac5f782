// Package middleware provides the HTTP middleware stack for the sync
// server's REST surface, grounded on the teacher's internal/api/middleware
// package (request ID, logging, CORS, rate limiting, auth) and adapted to
// this service's bearer-token auth and per-user rate limiting.
package middleware

// contextKey namespaces this package's context values.
type contextKey string

const (
	requestIDContextKey contextKey = "request_id"
	userContextKey      contextKey = "user_id"
)

// HTTP headers used across the middleware stack.
const (
	RequestIDHeader          = "X-Request-ID"
	AuthorizationHeader       = "Authorization"
	RateLimitLimitHeader      = "X-RateLimit-Limit"
	RateLimitRemainingHeader  = "X-RateLimit-Remaining"
	RateLimitResetHeader      = "X-RateLimit-Reset"
)
