package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RateLimitMiddleware counts requests per api key (falling back to the
// caller IP) against the fixed window. Runs after auth so the key is on the
// context.
func (mw *MiddlewareManager) RateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, _ := c.Get(APIKeyCtxKey).(string)
			if key == "" {
				key = c.RealIP()
			}

			res, err := mw.limiter.Check(c.Request().Context(), key)
			if err != nil {
				// A broken limiter backend should not take the API down.
				mw.logger.Errorf("rate limit check failed: %v", err)
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", mw.cfg.RateLimit.MaxRequests))
			c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Remaining))

			if !res.Allowed {
				c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", int(res.ResetAfter.Seconds())))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":      "Rate limit exceeded",
					"resetAfter": res.ResetAfter.Milliseconds(),
				})
			}
			return next(c)
		}
	}
}
