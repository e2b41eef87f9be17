package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/legalnest/backend/internal/catalog"
)

func listServicesHandler(cat *catalog.Catalog) echo.HandlerFunc {
	return func(c echo.Context) error {
		all := cat.All()
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"count":   len(all),
			"data":    all,
		})
	}
}

func getServiceHandler(cat *catalog.Catalog) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := cat.Get(c.Param("slug"))
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]any{"success": false, "message": "Service not found"})
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "data": s})
	}
}
