package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetLimit reads the "limit" query parameter, clamped to (0, max].
func GetLimit(c echo.Context, defaultLimit, max int) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > max {
		return max
	}
	return limit
}
