package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/whisperbot/errors"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests per key.
	RequestsPerMinute int
	// KeyFunc extracts the rate limit key. Defaults to client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit applies a per-key sliding one-minute window.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	rl := newRateLimiter(cfg.RequestsPerMinute, time.Now)

	return func(c *gin.Context) {
		if !rl.allow(cfg.KeyFunc(c)) {
			abort(c, apperrors.RateLimited(cfg.RequestsPerMinute))
			return
		}
		c.Next()
	}
}

// IPBasedKey uses the client IP as the rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// ParamKey keys by a route parameter, falling back to client IP.
func ParamKey(name string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if v := c.Param(name); v != "" {
			return name + ":" + v
		}
		return c.ClientIP()
	}
}

// pruneEvery bounds how many keys accumulate before stale ones are swept.
const pruneEvery = 1024

type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	now      func() time.Time
}

func newRateLimiter(limit int, now func() time.Time) *rateLimiter {
	return &rateLimiter{requests: make(map[string][]time.Time), limit: limit, now: now}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-time.Minute)
	if len(rl.requests) >= pruneEvery {
		rl.prune(cutoff)
	}

	valid := filterByTime(rl.requests[key], cutoff)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

func (rl *rateLimiter) prune(cutoff time.Time) {
	for key, times := range rl.requests {
		if valid := filterByTime(times, cutoff); len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	var result []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
