package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mbergo/guardrails/pkg/api"
)

// RateLimiter throttles callers per client IP. Every AI call costs real
// provider quota, so the limiter sits in front of the whole /v1 surface.
type RateLimiter struct {
	mu       sync.RWMutex
	visitors map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	logger   *zap.Logger
}

func NewRateLimiter(rps float64, burst int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.RLock()
	limiter, ok := rl.visitors[ip]
	rl.mu.RUnlock()
	if ok {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	// re-check: another request from this IP may have won the race
	if limiter, ok = rl.visitors[ip]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[ip] = limiter
	return limiter
}

// Middleware rejects over-limit requests with a problem+json 429 through
// the error handler, so a throttled POST /v1/call can never be mistaken
// for a value-level CallResult failure.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !rl.limiterFor(ip).Allow() {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			_ = c.Error(api.RateLimitProblem("Too many requests from this client. Slow down and retry."))
			c.Abort()
			return
		}

		c.Next()
	}
}
