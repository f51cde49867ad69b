package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/events"
	"github.com/mstolbov/market_api/internal/service"
	"github.com/mstolbov/market_api/internal/transport"
)

type CartHandler struct {
	Cart     *service.CartService
	Orders   *service.OrderService
	Producer *events.Producer
}

func (h *CartHandler) Get(c echo.Context) error {
	actor := currentActor(c)
	items, err := h.Cart.List(c.Request().Context(), actor.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) Add(c echo.Context) error {
	actor := currentActor(c)

	var req transport.CartLineRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.ProductID == 0 {
		return badRequest(c, "product_id is required")
	}

	item, err := h.Cart.Add(c.Request().Context(), actor.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(actor.UserID), map[string]any{
		"type":      "cart_line_added",
		"userID":    actor.UserID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

// SetLine overwrites one line's quantity; zero or negative removes it.
func (h *CartHandler) SetLine(c echo.Context) error {
	actor := currentActor(c)

	productID, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transport.CartLineRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	item, err := h.Cart.SetQuantity(c.Request().Context(), actor.UserID, productID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	if item == nil {
		return c.JSON(http.StatusOK, map[string]any{"removed_product": productID})
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) Remove(c echo.Context) error {
	actor := currentActor(c)

	productID, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.Cart.Remove(c.Request().Context(), actor.UserID, productID); err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(actor.UserID), map[string]any{
		"type":      "cart_line_removed",
		"userID":    actor.UserID,
		"productID": productID,
	})
	return c.JSON(http.StatusOK, map[string]any{"removed_product": productID})
}

func (h *CartHandler) Checkout(c echo.Context) error {
	actor := currentActor(c)

	order, err := h.Orders.Checkout(c.Request().Context(), actor.UserID)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, fmt.Sprint(actor.UserID), map[string]any{
		"type":      "order_created",
		"userID":    actor.UserID,
		"orderID":   order.ID,
		"reference": order.Reference,
		"total":     order.Total,
	})
	return c.JSON(http.StatusCreated, order)
}
