package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	ttl      time.Duration
}

// NewRateLimiter creates a keyed limiter.
// r is requests per second, b the maximum burst.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
		ttl:      5 * time.Minute,
	}
}

// Allow reports whether one more request for key fits the budget
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Len returns the number of tracked keys
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Sweep drops keys idle for longer than the TTL
func (rl *RateLimiter) Sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.ttl {
			delete(rl.visitors, key)
		}
	}
}

// Run sweeps idle keys until stop is closed
func (rl *RateLimiter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			rl.Sweep(now)
		}
	}
}

// PerIP rate limits by client IP
func PerIP(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// PerUser rate limits authenticated callers by user ID; anonymous requests pass
func PerUser(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.Next()
			return
		}

		if !limiter.Allow(userID) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please slow down.",
			})
			return
		}
		c.Next()
	}
}

// WebSocketLimiter limits messages on a single WebSocket connection
type WebSocketLimiter struct {
	limiter *rate.Limiter
}

// NewWebSocketLimiter allows messagesPerMinute with an equal burst
func NewWebSocketLimiter(messagesPerMinute int) *WebSocketLimiter {
	if messagesPerMinute <= 0 {
		messagesPerMinute = 20
	}
	return &WebSocketLimiter{
		limiter: rate.NewLimiter(rate.Limit(messagesPerMinute)/60.0, messagesPerMinute),
	}
}

// Allow checks if a message is allowed
func (wsl *WebSocketLimiter) Allow() bool {
	return wsl.limiter.Allow()
}
