package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/service"
	"github.com/mstolbov/market_api/internal/transport"
)

type PostHandler struct {
	Svc *service.PostService
}

func (h *PostHandler) List(c echo.Context) error {
	opts := service.ListPostsOptions{
		Query:  c.QueryParam("q"),
		SortBy: c.QueryParam("sort"),
		Desc:   c.QueryParam("order") == "desc",
	}
	if s := c.QueryParam("author_id"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			opts.AuthorID = uint(v)
		}
	}
	opts.Page, opts.Size = pageParams(c)

	posts, meta, err := h.Svc.List(c.Request().Context(), opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(posts, meta))
}

func (h *PostHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	post, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c echo.Context) error {
	var req transport.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	post, err := h.Svc.Create(c.Request().Context(), currentActor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Put(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transport.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	post, created, err := h.Svc.Upsert(c.Request().Context(), currentActor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, post)
}

func (h *PostHandler) Patch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transport.PatchPostRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	post, err := h.Svc.Patch(c.Request().Context(), currentActor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	post, err := h.Svc.Delete(c.Request().Context(), currentActor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}
