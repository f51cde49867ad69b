package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/service"
	"github.com/mstolbov/market_api/internal/transport"
)

type CommentHandler struct {
	Svc *service.CommentService
}

func (h *CommentHandler) List(c echo.Context) error {
	var opts service.ListCommentsOptions
	if s := c.QueryParam("post_id"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			opts.PostID = uint(v)
		}
	}
	if s := c.QueryParam("author_id"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			opts.AuthorID = uint(v)
		}
	}
	opts.Page, opts.Size = pageParams(c)

	comments, meta, err := h.Svc.List(c.Request().Context(), opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(comments, meta))
}

func (h *CommentHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	comment, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Create(c echo.Context) error {
	var req transport.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.PostID == 0 {
		return badRequest(c, "post_id is required")
	}

	comment, err := h.Svc.Create(c.Request().Context(), currentActor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Put(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transport.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.PostID == 0 {
		return badRequest(c, "post_id is required")
	}

	comment, created, err := h.Svc.Upsert(c.Request().Context(), currentActor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, comment)
}

func (h *CommentHandler) Patch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transport.PatchCommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	comment, err := h.Svc.Patch(c.Request().Context(), currentActor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	comment, err := h.Svc.Delete(c.Request().Context(), currentActor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, comment)
}
