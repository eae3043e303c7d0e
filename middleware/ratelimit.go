package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter throttles a route with per-client-IP token buckets. Login and
// draft image uploads each get their own instance: login is the only
// unauthenticated POST, and a single upload request fans out to the blob
// store, so neither should spend the other's budget.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	burst   float64
	perSec  float64
}

type tokenBucket struct {
	remaining float64
	seenAt    time.Time
}

// NewRateLimiter admits burst requests immediately per client, refilled
// evenly over window.
func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		burst:   float64(burst),
		perSec:  float64(burst) / window.Seconds(),
	}
	go rl.evictIdle()
	return rl
}

// evictIdle drops buckets for clients not seen in ten minutes so the map
// does not keep every IP that ever hit the endpoint.
func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-10 * time.Minute)
		for ip, b := range rl.buckets {
			if b.seenAt.Before(cutoff) {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) take(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[ip]
	if !ok {
		rl.buckets[ip] = &tokenBucket{remaining: rl.burst - 1, seenAt: now}
		return true
	}

	b.remaining += now.Sub(b.seenAt).Seconds() * rl.perSec
	if b.remaining > rl.burst {
		b.remaining = rl.burst
	}
	b.seenAt = now

	if b.remaining < 1 {
		return false
	}
	b.remaining--
	return true
}

// Middleware rejects over-budget clients with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.take(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			c.Abort()
			return
		}
		c.Next()
	}
}
