package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/events"
	"github.com/mstolbov/market_api/internal/service"
	"github.com/mstolbov/market_api/internal/transport"
)

type AuthHandler struct {
	Svc      *service.AuthService
	Producer *events.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	user, err := h.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	result, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(result.User.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": result.User.ID,
	})
	return c.JSON(http.StatusOK, map[string]any{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    int64(time.Until(result.AccessExp).Seconds()),
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	result, err := h.Svc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"token_type":    "Bearer",
		"expires_in":    int64(time.Until(result.AccessExp).Seconds()),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	if err := h.Svc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "logged out"})
}
