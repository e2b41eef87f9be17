package middleware

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v4"
	"github.com/legalnest/backend/internal/metrics"
	"github.com/legalnest/backend/internal/ratelimit"
	"go.uber.org/zap"
)

const rateLimitedMessage = "Too many requests from this IP, please try again later."

// RateLimitMiddleware applies the fixed-window limiter per client address
// (echo RealIP). A failing store lets the request through.
func RateLimitMiddleware(l *ratelimit.Limiter, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			res, err := l.Allow(c.Request().Context(), ip)
			if err != nil {
				log.Warn("rate limit store unavailable, allowing request", zap.String("ip", ip), zap.Error(err))
				return next(c)
			}

			now := l.Now()
			h := c.Response().Header()
			h.Set("RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(int(res.RetryAfter(now).Seconds())))

			if !res.Allowed {
				metrics.RateLimitedTotal.Inc()
				h.Set("Retry-After", strconv.Itoa(int(res.RetryAfter(now).Seconds())))
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"success": false,
					"message": rateLimitedMessage,
				})
			}
			return next(c)
		}
	}
}
