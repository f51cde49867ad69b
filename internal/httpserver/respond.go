package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/logging"
	appmw "github.com/mstolbov/market_api/internal/middleware"
	"github.com/mstolbov/market_api/internal/query"
	"github.com/mstolbov/market_api/internal/service"
	"github.com/mstolbov/market_api/internal/transport"
)

// respondError translates every domain error into its status code and a
// structured body carrying the error kind. Unexpected failures are logged
// and reported generically.
func respondError(c echo.Context, err error) error {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusUnprocessableEntity, transport.ErrorResponse{
			Error:   "validation_failed",
			Message: "validation failed",
			Fields:  vErr.Fields,
		})
	}

	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		return c.JSON(http.StatusConflict, transport.ErrorResponse{
			Error:   "insufficient_stock",
			Message: stockErr.Error(),
		})
	}

	var trErr *service.TransitionError
	if errors.As(err, &trErr) {
		return c.JSON(http.StatusConflict, transport.ErrorResponse{
			Error:   "invalid_transition",
			Message: trErr.Error(),
		})
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, transport.ErrorResponse{
			Error: "not_found", Message: err.Error(),
		})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, transport.ErrorResponse{
			Error: "conflict", Message: err.Error(),
		})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, transport.ErrorResponse{
			Error: "unauthenticated", Message: "invalid or missing credentials",
		})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, transport.ErrorResponse{
			Error: "forbidden", Message: "you don't have enough rights",
		})
	case errors.Is(err, service.ErrEmptyCart):
		return c.JSON(http.StatusUnprocessableEntity, transport.ErrorResponse{
			Error: "empty_cart", Message: "cart is empty",
		})
	}

	logging.FromContext(c.Request().Context()).Error("internal error", "error", err)
	return c.JSON(http.StatusInternalServerError, transport.ErrorResponse{
		Error: "internal", Message: "internal server error",
	})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, transport.ErrorResponse{
		Error: "bad_request", Message: msg,
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func pageParams(c echo.Context) (page, size int) {
	page = parseIntDefault(c.QueryParam("page"), 1)
	size = parseIntDefault(c.QueryParam("size"), query.DefaultPageSize)
	return page, size
}

func currentActor(c echo.Context) service.Actor {
	userID, _ := c.Get(appmw.CtxUserID).(uint)
	role, _ := c.Get(appmw.CtxRole).(string)
	return service.Actor{UserID: userID, Role: role}
}

func listResponse(items any, meta query.Meta) map[string]any {
	return map[string]any{
		"data": items,
		"meta": meta,
	}
}
