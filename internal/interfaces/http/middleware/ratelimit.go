package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Requests int64
	Window   time.Duration
	// Redis shares the counters between instances; nil keeps them in memory.
	Redis  *redis.Client
	Prefix string
	// ExcludedPaths are path prefixes that are never limited
	ExcludedPaths []string
}

// DefaultRateLimitConfig returns the default limits
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests:      100,
		Window:        time.Minute,
		Prefix:        "cms:ratelimit:",
		ExcludedPaths: []string{"/health", "/swagger"},
	}
}

// RateLimit returns a per client IP rate limiting middleware
func RateLimit(cfg RateLimitConfig) (gin.HandlerFunc, error) {
	if cfg.Requests <= 0 || cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d per %s", cfg.Requests, cfg.Window)
	}
	rate := limiter.Rate{Period: cfg.Window, Limit: cfg.Requests}

	var store limiter.Store
	if cfg.Redis != nil {
		var err error
		store, err = sredis.NewStoreWithOptions(cfg.Redis, limiter.StoreOptions{Prefix: cfg.Prefix})
		if err != nil {
			return nil, fmt.Errorf("create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          cfg.Prefix,
			CleanUpInterval: cfg.Window,
		})
	}

	excluded := cfg.ExcludedPaths
	return mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithKeyGetter(func(c *gin.Context) string {
			for _, prefix := range excluded {
				if strings.HasPrefix(c.Request.URL.Path, prefix) {
					return ""
				}
			}
			return c.ClientIP()
		}),
		mgin.WithExcludedKey(func(key string) bool { return key == "" }),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.JSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal,
				"Rate limiter unavailable",
				GetRequestID(c),
			))
		}),
	), nil
}
