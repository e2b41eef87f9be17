package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminTokenMiddleware guards the listing routes with a shared token sent in
// X-Admin-Token. An empty token disables the check.
func AdminTokenMiddleware(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if token == "" {
			return next
		}
		return func(c echo.Context) error {
			got := strings.TrimSpace(c.Request().Header.Get(AdminTokenHeader))
			if got == "" {
				return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "Missing admin token"})
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid admin token"})
			}
			return next(c)
		}
	}
}
