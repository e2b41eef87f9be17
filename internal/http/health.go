package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func healthHandler(started time.Time) echo.HandlerFunc {
	return func(c echo.Context) error {
		now := time.Now()
		return c.JSON(http.StatusOK, map[string]any{
			"status":    "OK",
			"timestamp": now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			"uptime":    now.Sub(started).Seconds(),
		})
	}
}
