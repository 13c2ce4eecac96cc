package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"campuschat/internal/infrastructure/ratelimit"
	"campuschat/pkg/errors"
	"campuschat/pkg/logger"
	"campuschat/pkg/response"
)

const actionHTTPRequest = "http_request"

// RateLimit throttles requests per client IP.
func RateLimit(limiter *ratelimit.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			allowed, wait := limiter.Allow(ip, actionHTTPRequest)
			if !allowed {
				logger.Warn("RATE LIMIT: Blocked request from IP %s (retry in %v)", ip, wait)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded"))
			}

			return next(c)
		}
	}
}
