package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/AnTengye/contractreview/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed window counter keyed by caller
type RateLimiter struct {
	mu        sync.Mutex
	tokens    map[string]int
	lastReset time.Time
	rate      int           // requests per window
	window    time.Duration // time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:    make(map[string]int),
		lastReset: time.Now(),
		rate:      rate,
		window:    window,
	}
}

// Allow records a request for key and reports whether it fits in the window.
// When it does not, the time until the window resets is returned.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastReset) > l.window {
		l.tokens = make(map[string]int)
		l.lastReset = time.Now()
	}

	if l.tokens[key] >= l.rate {
		return false, l.window - time.Since(l.lastReset)
	}
	l.tokens[key]++
	return true, 0
}

// limitKey prefers the authenticated tenant so one tenant behind many
// addresses shares a budget
func limitKey(c *gin.Context) string {
	if tenant := GetTenant(c); tenant != "" {
		return "tenant:" + tenant
	}
	return "ip:" + c.ClientIP()
}

// RateLimit middleware limits requests per tenant, or per IP before auth
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		key := limitKey(c)

		ok, retryAfter := limiter.Allow(key)
		if !ok {
			logger.Warn(c.Request.Context(), "rate limit exceeded", "key", key, "client_ip", c.ClientIP())

			secs := int(retryAfter.Round(time.Second).Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
