package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/api"
	"github.com/hoopsight/hoopsight/internal/api/handlers"
	"github.com/hoopsight/hoopsight/internal/api/middleware"
	"github.com/hoopsight/hoopsight/internal/providers"
	"github.com/hoopsight/hoopsight/internal/services"
	"github.com/hoopsight/hoopsight/pkg/config"
	"github.com/hoopsight/hoopsight/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logger with service context
	structuredLogger := logger.InitLogger("info", cfg.IsDevelopment())
	logger.WithService("hoopsight").WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
		"upstream":    cfg.UpstreamBaseURL,
	}).Info("Starting leaderboard service")

	// Setup Gin mode
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithService("hoopsight").Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithService("hoopsight").Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	cacheService := services.NewCacheService(redisClient)
	predictionsClient := providers.NewPredictionsClient(
		cfg.UpstreamBaseURL,
		cfg.UpstreamTimeout,
		cfg.UpstreamRateLimit,
		cfg.CircuitBreakerThreshold,
		cacheService,
		cfg.LeaderboardCacheTTL,
		structuredLogger,
	)

	whatIfStore := services.NewWhatIfStore(cfg.SessionIdleTimeout, structuredLogger)
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	whatIfStore.StartSweeper(sweepCtx, time.Minute)

	// Background cache refresh
	var refreshService *services.RefreshService
	if cfg.EnableBackgroundRefresh {
		refreshService = services.NewRefreshService(predictionsClient, structuredLogger)
		if err := refreshService.Start(cfg.RefreshCronSpec); err != nil {
			logger.WithService("hoopsight").Fatalf("Failed to start refresh schedule: %v", err)
		}
		defer refreshService.Stop()
	}

	// Initialize router
	router := gin.New()
	router.Use(middleware.RequestLogger(structuredLogger), gin.Recovery())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(cacheService)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, predictionsClient, whatIfStore, structuredLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.WithService("hoopsight").WithField("port", cfg.Port).Info("Leaderboard service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("hoopsight").Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("hoopsight").Info("Shutting down leaderboard service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithService("hoopsight").Fatalf("Leaderboard service forced to shutdown: %v", err)
	}

	logger.WithService("hoopsight").Info("Leaderboard service exited")
}
