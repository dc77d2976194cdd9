package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// APIKeyCtxKey is where the authenticated key is stored on the echo context.
const APIKeyCtxKey = "api_key"

// APIKeyMiddleware checks X-API-Key or a bearer Authorization header against
// the configured static allow-list.
func (mw *MiddlewareManager) APIKeyMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get("X-API-Key")
			if apiKey == "" {
				bearer := c.Request().Header.Get("Authorization")
				if strings.HasPrefix(strings.ToLower(bearer), "bearer ") {
					apiKey = strings.TrimSpace(bearer[len("bearer "):])
				}
			}

			if apiKey == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "API key is required"})
			}
			if len(mw.cfg.Auth.APIKeys) == 0 {
				mw.logger.Error("auth middleware: no API keys configured")
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "API keys not configured"})
			}

			for _, known := range mw.cfg.Auth.APIKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(known)) == 1 {
					c.Set(APIKeyCtxKey, apiKey)
					return next(c)
				}
			}

			mw.logger.Warnf("auth middleware: invalid API key from %s", c.RealIP())
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid API key"})
		}
	}
}
