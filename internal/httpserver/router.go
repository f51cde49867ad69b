package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	appmw "github.com/mstolbov/market_api/internal/middleware"
)

type Deps struct {
	JWTSecret []byte
	Logger    *slog.Logger

	RateLimit       int
	RateLimitWindow time.Duration

	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	ProductHandler *ProductHandler
	PostHandler    *PostHandler
	CommentHandler *CommentHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	SearchHandler  *SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	if d.Logger != nil {
		e.Use(appmw.RequestLogger(d.Logger))
	}
	if d.RateLimit > 0 {
		e.Use(appmw.RateLimit(d.RateLimit, d.RateLimitWindow))
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)

	v1.GET("/search", d.SearchHandler.Search)

	requireAuth := appmw.Auth(d.JWTSecret)
	adminOnly := appmw.RequireRole("admin")

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.List)
	products.GET("/:id", d.ProductHandler.Get)
	products.POST("", d.ProductHandler.Create, requireAuth, adminOnly)
	products.PUT("/:id", d.ProductHandler.Put, requireAuth, adminOnly)
	products.PATCH("/:id", d.ProductHandler.Patch, requireAuth, adminOnly)
	products.DELETE("/:id", d.ProductHandler.Delete, requireAuth, adminOnly)

	users := v1.Group("/users", requireAuth)
	users.GET("", d.UserHandler.List, adminOnly)
	users.POST("", d.UserHandler.Create, adminOnly)
	users.GET("/:id", d.UserHandler.Get)
	users.PUT("/:id", d.UserHandler.Put, adminOnly)
	users.PATCH("/:id", d.UserHandler.Patch)
	users.DELETE("/:id", d.UserHandler.Delete, adminOnly)

	posts := v1.Group("/posts")
	posts.GET("", d.PostHandler.List)
	posts.GET("/:id", d.PostHandler.Get)
	posts.POST("", d.PostHandler.Create, requireAuth)
	posts.PUT("/:id", d.PostHandler.Put, requireAuth)
	posts.PATCH("/:id", d.PostHandler.Patch, requireAuth)
	posts.DELETE("/:id", d.PostHandler.Delete, requireAuth)

	comments := v1.Group("/comments")
	comments.GET("", d.CommentHandler.List)
	comments.GET("/:id", d.CommentHandler.Get)
	comments.POST("", d.CommentHandler.Create, requireAuth)
	comments.PUT("/:id", d.CommentHandler.Put, requireAuth)
	comments.PATCH("/:id", d.CommentHandler.Patch, requireAuth)
	comments.DELETE("/:id", d.CommentHandler.Delete, requireAuth)

	cart := v1.Group("/cart", requireAuth)
	cart.GET("", d.CartHandler.Get)
	cart.POST("", d.CartHandler.Add)
	cart.PUT("/:id", d.CartHandler.SetLine)
	cart.DELETE("/:id", d.CartHandler.Remove)
	cart.POST("/checkout", d.CartHandler.Checkout)

	orders := v1.Group("/orders", requireAuth)
	orders.GET("", d.OrderHandler.List)
	orders.GET("/:id", d.OrderHandler.Get)
	orders.PATCH("/:id/status", d.OrderHandler.SetStatus)
}
