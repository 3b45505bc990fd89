package middleware

import (
	"net/http"
	"sync"

	"go-lcms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyedRateLimiter keeps one token bucket per key (client IP or user id).
type KeyedRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}
	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	return rateLimitBy(NewKeyedRateLimiter(r, b), func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByUser skips unauthenticated requests.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	return rateLimitBy(NewKeyedRateLimiter(r, b), func(c *gin.Context) string { return c.GetString("user_id") })
}

func rateLimitBy(limiter *KeyedRateLimiter, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}
		if !limiter.GetLimiter(key).Allow() {
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
