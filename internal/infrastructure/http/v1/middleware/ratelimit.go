package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"renodevis/internal/core/apperror"
	"renodevis/pkg/logger"
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limiters sync.Map // ip -> *visitor
	rate     rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	seen    time.Time
}

// NewIPRateLimiter allows r requests per second per IP with the given burst.
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  r,
		burst: burst,
		idle:  10 * time.Minute,
		now:   time.Now,
	}
}

// NewAuthRateLimiter allows 5 login or register attempts per minute per IP.
func NewAuthRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(5.0/60.0), 5)
}

func (l *IPRateLimiter) allow(ip string) bool {
	now := l.now()
	v, _ := l.limiters.LoadOrStore(ip, &visitor{limiter: rate.NewLimiter(l.rate, l.burst)})
	vis := v.(*visitor)

	vis.mu.Lock()
	vis.seen = now
	vis.mu.Unlock()
	return vis.limiter.AllowN(now, 1)
}

// Sweep forgets IPs idle for longer than the idle window.
func (l *IPRateLimiter) Sweep() int {
	cutoff := l.now().Add(-l.idle)
	removed := 0
	l.limiters.Range(func(key, v any) bool {
		vis := v.(*visitor)
		vis.mu.Lock()
		stale := vis.seen.Before(cutoff)
		vis.mu.Unlock()
		if stale {
			l.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// RateLimit rejects requests over the limit with 429.
func (l *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.allow(ip) {
			logger.Warn(c.Request.Context(), "rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
			_ = c.Error(apperror.NewRateLimited())
			c.Abort()
			return
		}
		c.Next()
	}
}
