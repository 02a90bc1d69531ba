package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit limits each client IP to maxRequests per fixed window, counted
// in Redis. The window starts with the first request and is not extended by
// later ones.
func RateLimit(redisClient *redis.Client, keyPrefix string, maxRequests int, window time.Duration) echo.MiddlewareFunc {
	if redisClient == nil {
		panic("Redis client cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 {
		panic("maxRequests must be positive for RateLimit middleware")
	}
	if window <= 0 {
		panic("window duration must be positive for RateLimit middleware")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := keyPrefix + "ratelimit:" + c.Path() + ":" + c.RealIP()

			pipe := redisClient.Pipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				logrus.WithError(err).Error("RateLimit: Redis pipeline failed")
				return echo.NewHTTPError(http.StatusInternalServerError, "Rate limiting error")
			}

			if incr.Val() > int64(maxRequests) {
				logrus.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Path()}).Warn("Rate limit exceeded")
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
