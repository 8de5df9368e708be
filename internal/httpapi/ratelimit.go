// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LitterPick Contributors

package httpapi

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the per-IP login limiter.
type RateLimiterConfig struct {
	PerMinute       float64
	Burst           int
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig allows 10 logins per minute per IP with a burst of 5.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		PerMinute:       10,
		Burst:           5,
		CleanupInterval: 5 * time.Minute,
	}
}

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter is a token bucket per client IP. Entries idle for two
// cleanup intervals are evicted by a background loop that runs until Close.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	every  time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	limiters map[string]*ipLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterClock overrides the limiter clock.
func WithRateLimiterClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// WithRateLimiterLogger sets the logger used for rejected requests.
func WithRateLimiterLogger(logger *slog.Logger) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.logger = logger
	}
}

// NewRateLimiter starts a limiter and its cleanup loop. Non-positive
// config values fall back to DefaultRateLimiterConfig.
func NewRateLimiter(cfg RateLimiterConfig, opts ...RateLimiterOption) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = def.PerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		limit:    rate.Limit(cfg.PerMinute / 60.0),
		burst:    cfg.Burst,
		every:    cfg.CleanupInterval,
		now:      time.Now,
		logger:   slog.Default(),
		limiters: make(map[string]*ipLimiter),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	go rl.cleanupLoop()
	return rl
}

// Close stops the cleanup loop and waits for it to exit. Safe to call
// more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
	<-rl.doneCh
}

// Allow reports whether a request from key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = now
	rl.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Middleware rejects requests over the limit with 429 and a Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			rl.logger.WarnContext(r.Context(), "rate limit exceeded",
				slog.String("client_ip", ip),
				slog.String("path", r.URL.Path))
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
				Code:    CodeRateLimited,
				Message: messageByCode[CodeRateLimited],
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) retryAfterSeconds() int {
	secs := int(math.Ceil(1.0 / float64(rl.limit)))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (rl *RateLimiter) cleanupLoop() {
	defer close(rl.doneCh)

	ticker := time.NewTicker(rl.every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stopCh:
			return
		}
	}
}

// evictIdle drops limiters untouched for two cleanup intervals.
func (rl *RateLimiter) evictIdle() {
	cutoff := rl.now().Add(-2 * rl.every)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// clientIP is the host part of RemoteAddr. Forwarding headers are not
// trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
