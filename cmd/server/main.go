package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mstolbov/market_api/internal/config"
	"github.com/mstolbov/market_api/internal/db"
	"github.com/mstolbov/market_api/internal/events"
	"github.com/mstolbov/market_api/internal/httpserver"
	"github.com/mstolbov/market_api/internal/logging"
	"github.com/mstolbov/market_api/internal/repo"
	"github.com/mstolbov/market_api/internal/search"
	"github.com/mstolbov/market_api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	config.MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.RefreshSecret, "REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel)

	database, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	producer := events.NewProducer(cfg.Brokers())

	searchHandler := &httpserver.SearchHandler{Index: cfg.ESIndex}
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		searchHandler.ES = es
	}

	r := repo.New(database)
	jwtSecret := []byte(cfg.JWTSecret)
	refreshSecret := []byte(cfg.RefreshSecret)

	deps := &httpserver.Deps{
		JWTSecret:       jwtSecret,
		Logger:          logger,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: time.Duration(cfg.RateLimitWindow) * time.Second,

		AuthHandler: &httpserver.AuthHandler{
			Svc:      &service.AuthService{Repo: r, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
			Producer: producer,
		},
		UserHandler: &httpserver.UserHandler{
			Svc:      &service.UserService{Repo: r},
			Producer: producer,
		},
		ProductHandler: &httpserver.ProductHandler{
			Svc:      &service.ProductService{Repo: r},
			Producer: producer,
		},
		PostHandler:    &httpserver.PostHandler{Svc: &service.PostService{Repo: r}},
		CommentHandler: &httpserver.CommentHandler{Svc: &service.CommentService{Repo: r}},
		CartHandler: &httpserver.CartHandler{
			Cart:     &service.CartService{DB: database, Repo: r},
			Orders:   &service.OrderService{DB: database, Repo: r},
			Producer: producer,
		},
		OrderHandler: &httpserver.OrderHandler{
			Svc:      &service.OrderService{DB: database, Repo: r},
			Producer: producer,
		},
		SearchHandler: searchHandler,
	}

	e := echo.New()
	e.HideBanner = true
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
