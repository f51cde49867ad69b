package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/events"
	"github.com/mstolbov/market_api/internal/models"
	"github.com/mstolbov/market_api/internal/service"
	"github.com/mstolbov/market_api/internal/transport"
)

type OrderHandler struct {
	Svc      *service.OrderService
	Producer *events.Producer
}

func (h *OrderHandler) List(c echo.Context) error {
	opts := service.ListOrdersOptions{
		Status: c.QueryParam("status"),
	}
	opts.Page, opts.Size = pageParams(c)

	orders, meta, err := h.Svc.List(c.Request().Context(), currentActor(c), opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(orders, meta))
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	order, err := h.Svc.Get(c.Request().Context(), currentActor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) SetStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transport.OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	order, err := h.Svc.Transition(c.Request().Context(), currentActor(c), id, models.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(order.UserID), map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID,
		"status":  order.Status,
	})
	return c.JSON(http.StatusOK, order)
}
