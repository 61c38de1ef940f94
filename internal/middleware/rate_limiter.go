package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerMinute int
	BurstSize         int
	KeyFunc           func(*gin.Context) string
	OnRateLimited     func(*gin.Context)
}

type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	config   RateLimiterConfig
	logger   *zap.Logger
}

func NewRateLimiter(config RateLimiterConfig, logger *zap.Logger) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	if config.OnRateLimited == nil {
		config.OnRateLimited = defaultOnRateLimited
	}

	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   config,
		logger:   logger,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.config.KeyFunc(c)
		limiter := rl.getLimiter(key)

		if !limiter.Allow() {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))

			rl.config.OnRateLimited(c)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.RequestsPerMinute))
		c.Next()
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		rps := rate.Limit(float64(rl.config.RequestsPerMinute) / 60.0)
		limiter = rate.NewLimiter(rps, rl.config.BurstSize)
		rl.limiters[key] = limiter
	}
	return limiter
}

func defaultOnRateLimited(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       "Rate limit exceeded",
		"code":        "RATE_LIMITED",
		"message":     "Too many requests, please try again later",
		"retry_after": 60,
	})
	c.Abort()
}

func StandardAPIRateLimit(logger *zap.Logger) gin.HandlerFunc {
	return NewRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 100,
		BurstSize:         10,
	}, logger).Middleware()
}

// AuthenticationRateLimit throttles the credential endpoints per client IP
// to slow down password spraying.
func AuthenticationRateLimit(logger *zap.Logger) gin.HandlerFunc {
	return NewRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 20,
		BurstSize:         5,
	}, logger).Middleware()
}
