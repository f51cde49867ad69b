package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/events"
	"github.com/mstolbov/market_api/internal/hash"
	"github.com/mstolbov/market_api/internal/logging"
	"github.com/mstolbov/market_api/internal/service"
	"github.com/mstolbov/market_api/internal/transport"
)

type UserHandler struct {
	Svc      *service.UserService
	Producer *events.Producer
}

func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	opts := service.ListUsersOptions{
		Role:   c.QueryParam("role"),
		Query:  c.QueryParam("q"),
		SortBy: c.QueryParam("sort"),
		Desc:   c.QueryParam("order") == "desc",
	}
	opts.Page, opts.Size = pageParams(c)
	switch c.QueryParam("active") {
	case "true":
		v := true
		opts.Active = &v
	case "false":
		v := false
		opts.Active = &v
	}

	users, meta, err := h.Svc.List(ctx, opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(users, meta))
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	actor := currentActor(c)
	if !actor.CanMutate(id) {
		return respondError(c, fmt.Errorf("user %d: %w", id, service.ErrForbidden))
	}

	user, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	var pwHash string
	if req.Password != "" {
		var err error
		pwHash, err = hash.HashPassword(req.Password)
		if err != nil {
			return respondError(c, err)
		}
	}

	user, err := h.Svc.Create(ctx, req, pwHash)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_created",
		"userID": user.ID,
		"email":  user.Email,
	})
	l.Info("user created", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Put(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transport.PutUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	user, created, err := h.Svc.Upsert(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}

	status := http.StatusOK
	eventType := "user_updated"
	if created {
		status = http.StatusCreated
		eventType = "user_created"
	}
	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   eventType,
		"userID": user.ID,
	})
	return c.JSON(status, user)
}

func (h *UserHandler) Patch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	actor := currentActor(c)
	if !actor.CanMutate(id) {
		return respondError(c, fmt.Errorf("user %d: %w", id, service.ErrForbidden))
	}

	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	// only admins may change roles or active state
	if actor.Role != "admin" && (req.Role != nil || req.Active != nil) {
		return respondError(c, fmt.Errorf("user %d: %w", id, service.ErrForbidden))
	}

	user, err := h.Svc.Patch(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_updated",
		"userID": user.ID,
	})
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.Svc.Delete(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(id), map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return c.JSON(http.StatusOK, user)
}
