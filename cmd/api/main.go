package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chachabrian/ride-admin-backend/internal/config"
	"github.com/chachabrian/ride-admin-backend/internal/database"
	"github.com/chachabrian/ride-admin-backend/internal/handlers"
	"github.com/chachabrian/ride-admin-backend/internal/logging"
	"github.com/chachabrian/ride-admin-backend/internal/middleware"
	"github.com/chachabrian/ride-admin-backend/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			logger.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	store := database.NewGormStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := services.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	var publisher services.EventPublisher = services.NewHubPublisher(hub)
	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer client.Close()

		redisPublisher := services.NewRedisPublisher(client)
		go redisPublisher.Subscribe(ctx, hub, logger)
		publisher = redisPublisher
	} else {
		logger.Info("REDIS_URL not set, live feed runs in-process")
	}

	queries := services.NewRideQueryService(store, cfg.Location)
	rides := services.NewRideService(store, publisher, logger)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.SentryDSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterRoutes(r, handlers.Deps{
		Queries:   queries,
		Rides:     rides,
		Hub:       hub,
		Health:    store,
		JWTSecret: cfg.JWTSecret,
		BaseURL:   cfg.BaseURL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
