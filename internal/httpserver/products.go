package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/events"
	"github.com/mstolbov/market_api/internal/service"
	"github.com/mstolbov/market_api/internal/transport"
)

type ProductHandler struct {
	Svc      *service.ProductService
	Producer *events.Producer
}

func parseFloatParam(c echo.Context, name string) *float64 {
	if s := c.QueryParam(name); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return &v
		}
	}
	return nil
}

func (h *ProductHandler) List(c echo.Context) error {
	opts := service.ListProductsOptions{
		Query:    c.QueryParam("q"),
		MinPrice: parseFloatParam(c, "min_price"),
		MaxPrice: parseFloatParam(c, "max_price"),
		InStock:  c.QueryParam("in_stock") == "true",
		SortBy:   c.QueryParam("sort"),
		Desc:     c.QueryParam("order") == "desc",
	}
	opts.Page, opts.Size = pageParams(c)

	products, meta, err := h.Svc.List(c.Request().Context(), opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(products, meta))
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	product, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	product, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(product.ID), map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Put(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	product, created, err := h.Svc.Upsert(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(product.ID), map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
	})
	return c.JSON(status, product)
}

func (h *ProductHandler) Patch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	product, err := h.Svc.Patch(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(product.ID), map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
	})
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	product, err := h.Svc.Delete(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicProductEvents, fmt.Sprint(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return c.JSON(http.StatusOK, product)
}
