package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/noteflow/syncserver/internal/api/httpx"
)

// RateLimiter hands out a token-bucket limiter per authenticated user (or,
// for unauthenticated routes, per remote address), grounded on the
// teacher's middleware.RateLimiter keyed map with periodic cleanup.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter builds a limiter allowing requestsPerMinute sustained,
// burst in a spike.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Cleanup drops limiters sitting at full capacity (i.e. unused since the
// last sweep). Intended to run on a ticker from the owning command.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	for key, l := range rl.limiters {
		if l.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}

// RunCleanup starts a background sweep every interval until ctx-less
// process exit; callers keep the returned stop func only for tests.
func (rl *RateLimiter) RunCleanup(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

// RateLimit enforces rl per caller, preferring the authenticated user ID and
// falling back to the remote address.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if userID, ok := UserID(r.Context()); ok {
				key = strconv.FormatInt(userID, 10)
			}
			limiter := rl.limiterFor(key)
			if !limiter.Allow() {
				w.Header().Set(RateLimitLimitHeader, strconv.Itoa(int(rl.rate*60)))
				w.Header().Set(RateLimitRemainingHeader, "0")
				w.Header().Set(RateLimitResetHeader, strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))
				w.Header().Set("Retry-After", "60")
				httpx.WriteJSON(w, http.StatusTooManyRequests, map[string]interface{}{
					"success":   false,
					"error":     "rate limit exceeded",
					"errorCode": "rate-limited",
					"requestId": GetRequestID(r.Context()),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
