package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters hands out one token bucket per client IP.
type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (cl *clientLimiters) get(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	l, ok := cl.limiters[ip]
	if !ok {
		l = rate.NewLimiter(cl.limit, cl.burst)
		cl.limiters[ip] = l
	}
	return l
}

// RateLimiter throttles requests per client IP. Non-positive limits
// fall back to 10 req/s with a burst of 5.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	if r <= 0 {
		r = 10
	}
	if b <= 0 {
		b = 5
	}
	cl := &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    r,
		burst:    b,
	}
	return func(c *gin.Context) {
		if !cl.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
