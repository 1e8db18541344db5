// ratelimit.go implements per-client rate limiting using a token bucket algorithm.
//
// How token bucket works:
// - Each client gets a "bucket" with N tokens (N = configured hourly limit)
// - Each request consumes 1 token
// - Tokens refill at a steady rate (N tokens per hour)
// - If the bucket is empty, the request is rejected with 429 Too Many Requests
//
// Clients are identified by ClientID: the JWT subject when auth is on,
// otherwise the remote IP.
package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/models"
)

// RateLimiter tracks request rates per client.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int // Requests per hour; 0 disables limiting
	now     func() time.Time
	stop    chan struct{}
}

// bucket tracks the token state for a single client.
type bucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// allowResult contains the result of a rate limit check,
// including header information for the response.
type allowResult struct {
	allowed   bool
	remaining float64
	limit     float64
}

// NewRateLimiter creates a rate limiter allowing limit requests per hour
// per client and starts its cleanup goroutine. Call Stop on shutdown.
func NewRateLimiter(limit int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go rl.cleanup(10 * time.Minute)

	return rl
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// RateLimit returns Gin middleware that enforces per-client rate limits.
// It must run after JWTAuth so authenticated clients are keyed by subject.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}

		result := rl.allow(ClientID(c))
		c.Header("X-RateLimit-Limit", formatFloat(result.limit))
		if !result.allowed {
			c.Header("X-RateLimit-Remaining", "0")
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Rate limit exceeded. Try again later.",
				Code:    http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", formatFloat(result.remaining))
		c.Next()
	}
}

// allow checks if a request should be allowed, consuming a token if so.
// Returns the result atomically to avoid races between checking the limit
// and reading the bucket for headers.
func (rl *RateLimiter) allow(clientID string) allowResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[clientID]
	if !exists {
		b = &bucket{
			tokens:     float64(rl.limit),
			maxTokens:  float64(rl.limit),
			refillRate: float64(rl.limit) / 3600.0, // tokens per second (rate per hour)
			lastRefill: now,
		}
		rl.buckets[clientID] = b
	}

	// Refill tokens based on elapsed time
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens < 1.0 {
		return allowResult{allowed: false, remaining: 0, limit: b.maxTokens}
	}

	b.tokens--
	return allowResult{allowed: true, remaining: b.tokens, limit: b.maxTokens}
}

// cleanup periodically removes stale buckets to prevent memory leaks.
func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Hour)
		}
	}
}

// evictIdle drops buckets untouched for longer than idle. An idle bucket
// has refilled completely, so dropping it loses nothing.
func (rl *RateLimiter) evictIdle(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for id, b := range rl.buckets {
		if now.Sub(b.lastRefill) > idle {
			delete(rl.buckets, id)
		}
	}
}

// formatFloat converts a float to a string for headers.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.0f", f)
}
