// Package middleware's rate limiter is a fixed-window counter per key
// (client IP), matching what api/middleware/endpoint_rate_limit.go's
// AuthRateLimiter composes against in the teacher pack. The teacher's own
// RateLimiter definition wasn't present in the retrieved files, so it is
// authored fresh here to the interface that call site expects
// (NewRateLimiter(limit, window), Allow(key), window field).
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	count     int
	expiresAt time.Time
}

type RateLimiter struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	counters map[string]*window
}

func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		window:   per,
		counters: make(map[string]*window),
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, exists := rl.counters[key]
	if !exists || now.After(w.expiresAt) {
		rl.counters[key] = &window{count: 1, expiresAt: now.Add(rl.window)}
		return true
	}

	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": rl.window.Seconds(),
			})
			return
		}
		c.Next()
	}
}

// EndpointRateLimiter layers a distinct RateLimiter per route path on top of
// the global one, for endpoints that need a tighter budget (login).
type EndpointRateLimiter struct {
	limiters map[string]*RateLimiter
	mu       sync.RWMutex
}

func NewEndpointRateLimiter() *EndpointRateLimiter {
	return &EndpointRateLimiter{limiters: make(map[string]*RateLimiter)}
}

func (erl *EndpointRateLimiter) AddEndpoint(path string, limit int, per time.Duration) {
	erl.mu.Lock()
	defer erl.mu.Unlock()
	erl.limiters[path] = NewRateLimiter(limit, per)
}

func (erl *EndpointRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		erl.mu.RLock()
		limiter, exists := erl.limiters[c.FullPath()]
		erl.mu.RUnlock()

		if exists {
			key := c.ClientIP()
			if !limiter.Allow(key) {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       "rate limit exceeded for this endpoint",
					"retry_after": limiter.window.Seconds(),
				})
				return
			}
		}
		c.Next()
	}
}

func AuthRateLimiter() gin.HandlerFunc {
	limiter := NewRateLimiter(5, time.Minute)
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many authentication attempts, please try again later",
				"retry_after": 60,
			})
			return
		}
		c.Next()
	}
}
