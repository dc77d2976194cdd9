package utils

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func GetIPAddress(c echo.Context) string {
	return c.RealIP()
}

// GetLimitOffsetFromCtx parses ?limit and ?offset with list defaults.
func GetLimitOffsetFromCtx(c echo.Context) (limit, offset int, err error) {
	limit = defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("invalid limit: %q", raw)
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset: %q", raw)
		}
	}
	return limit, offset, nil
}
