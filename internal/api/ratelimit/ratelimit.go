// Package ratelimit throttles BF2 API requests per caller tier,
// grounded on the composition engine's rate limiter middleware. The
// API server installs it on its root router, so every route shares
// one bucket per caller.
package ratelimit

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Tier names a caller's rate-limit bracket.
type Tier string

const (
	TierAnonymous Tier = "anonymous"
	TierFree      Tier = "free"
	TierPro       Tier = "pro"
	TierAdmin     Tier = "admin"
)

// TierConfig bounds one tier's request rate and burst.
type TierConfig struct {
	RequestsPerMinute int
	Burst             int
}

// TierConfigs is the BF2 service's default tier table. A
// RequestsPerMinute of -1 means unlimited.
var TierConfigs = map[Tier]TierConfig{
	TierAnonymous: {RequestsPerMinute: 5, Burst: 2},
	TierFree:      {RequestsPerMinute: 30, Burst: 10},
	TierPro:       {RequestsPerMinute: 300, Burst: 50},
	TierAdmin:     {RequestsPerMinute: -1, Burst: -1},
}

// Limiter holds one token-bucket limiter per caller key (user id or
// remote address for anonymous callers).
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates an empty Limiter.
func New() *Limiter {
	return &Limiter{limiters: make(map[string]*rate.Limiter)}
}

// Allow reports whether the caller identified by key, at tier, may
// proceed, creating its token bucket on first use.
func (l *Limiter) Allow(key string, tier Tier) bool {
	cfg, ok := TierConfigs[tier]
	if !ok {
		cfg = TierConfigs[TierAnonymous]
	}
	if cfg.RequestsPerMinute < 0 {
		return true
	}

	l.mu.Lock()
	rl, ok := l.limiters[key]
	if !ok {
		rl = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.Burst)
		l.limiters[key] = rl
	}
	l.mu.Unlock()

	return rl.Allow()
}

// Middleware wraps an http.Handler, rejecting callers over their tier's
// limit with 429. keyFunc extracts the caller key and tier from the
// request (typically set by an earlier auth middleware).
func (l *Limiter) Middleware(keyFunc func(*http.Request) (string, Tier)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, tier := keyFunc(r)
			if !l.Allow(key, tier) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error":"rate limit exceeded","tier":%q}`, tier)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
