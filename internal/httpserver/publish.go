package httpserver

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/events"
	"github.com/mstolbov/market_api/internal/logging"
)

// publish fires a domain event without failing the request; broker errors
// are only logged.
func publish(c echo.Context, p *events.Producer, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("event publish failed", "topic", topic, "error", err)
	}
}
