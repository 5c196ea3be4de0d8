package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"foodgram-backend/internal/shared/response"
	"foodgram-backend/internal/shared/utils"
)

// ClientIPMiddleware resolves the caller address once per request and
// stores it under "client_ip" for logging and rate limiting.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("client_ip", utils.ExtractClientIP(c))
		c.Next()
	}
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows perMinute requests per IP with the given burst.
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// Allow consumes a token for ip. Idle buckets are swept lazily on access.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, v := range l.limiters {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.limiters, key)
		}
	}

	v, ok := l.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// RateLimit rejects callers that exhausted their bucket with 429.
func RateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.GetString("client_ip")
		if ip == "" {
			ip = utils.ExtractClientIP(c)
		}

		if !limiter.Allow(ip) {
			c.Header("Retry-After", "60")
			response.TooManyRequests(c, "Too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
