package httpserver

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/query"
	"github.com/mstolbov/market_api/internal/search"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return badRequest(c, "q is required")
	}
	if h.ES == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"error":   "unavailable",
			"message": "search is not configured",
		})
	}

	page, size := pageParams(c)
	page, size = query.Clamp(page, size)
	from := (page - 1) * size

	total, products, err := search.Products(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":    total,
		"products": products,
	})
}
