// PAWSture Server - well-being alerting and recommendation engine
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ClaraBenejam/PAWSture/internal/cache"
	"github.com/ClaraBenejam/PAWSture/internal/chronic"
	"github.com/ClaraBenejam/PAWSture/internal/config"
	"github.com/ClaraBenejam/PAWSture/internal/cooldown"
	"github.com/ClaraBenejam/PAWSture/internal/detection"
	"github.com/ClaraBenejam/PAWSture/internal/dispatcher"
	"github.com/ClaraBenejam/PAWSture/internal/gamification"
	"github.com/ClaraBenejam/PAWSture/internal/infrastructure/api/rest"
	"github.com/ClaraBenejam/PAWSture/internal/ingest"
	"github.com/ClaraBenejam/PAWSture/internal/logger"
	"github.com/ClaraBenejam/PAWSture/internal/personalization"
	"github.com/ClaraBenejam/PAWSture/internal/store"
	"github.com/ClaraBenejam/PAWSture/internal/training"
	"github.com/ClaraBenejam/PAWSture/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	logger.SetDefault(appLogger)

	appLogger.Info("starting PAWSture server", "version", "1.0.0", "port", cfg.Server.Port)

	dbConfig := &store.Config{
		DSN:             cfg.Store.URL,
		MaxOpenConns:    cfg.Store.MaxConnections,
		MaxIdleConns:    cfg.Store.MinConnections,
		ConnMaxLifetime: cfg.Store.MaxConnLifetime,
		ConnMaxIdleTime: cfg.Store.MaxIdleTime,
		Debug:           cfg.Logging.Level == "debug",
	}

	db, err := store.NewDB(dbConfig)
	if err != nil {
		appLogger.Error("failed to initialize store connection", "error", err)
		os.Exit(1)
	}
	defer store.Close(db)

	gateway := store.NewGateway(db, cfg.Store.MaxRetries, cfg.Store.RetryDelay, cfg.Store.RetryBackoff)
	appLogger.Info("row store gateway connected", "max_conns", cfg.Store.MaxConnections)

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		appLogger.Warn("redis unavailable, cooldown table falls back to in-process state", "error", err)
		redisCache = nil
	} else {
		defer redisCache.Close()
		appLogger.Info("redis cache connected")
	}

	detector := detection.New(gateway, cfg.Detection)
	cooldownTable := cooldown.New(cooldown.Durations{
		PostureL3: cfg.Cooldown.PostureL3,
		PostureL2: cfg.Cooldown.PostureL2,
		Emotion:   cfg.Cooldown.Emotion,
	}, redisCache)

	dims := personalization.Dims{EmbedDim: cfg.Training.EmbeddingDim, HiddenDim: cfg.Training.HiddenDim}
	model := personalization.New(dims)

	trainingLoop := training.New(gateway, model, cfg.Training, appLogger)
	if err := trainingLoop.Run(context.Background()); err != nil {
		appLogger.Warn("initial training pass failed, serving via rules/cold fallback", "error", err)
	}

	ledger := gamification.New(gateway)
	responseIngest := ingest.New(gateway, ledger, appLogger)

	subscribers, err := transport.NewSubscriberStore(cfg.Transport.SubscriberPath)
	if err != nil {
		appLogger.Error("failed to load subscriber list", "error", err)
		os.Exit(1)
	}

	botClient := transport.NewClient(cfg.Transport.Token, cfg.Transport.OutboundTimeout)
	sender := transport.NewSender(botClient, subscribers)

	disp := dispatcher.New(gateway, detector, model, cooldownTable, sender, appLogger)
	monitor := chronic.New(detector)
	scheduler := dispatcher.NewScheduler(disp, monitor, sender, cfg.Cooldown.TickEvery, appLogger)
	scheduler.Start(cfg.Cooldown.TickEvery)
	defer scheduler.Stop()

	appLogger.Info("dispatcher scheduler started", "tick_interval", cfg.Cooldown.TickEvery)

	commandHandler := transport.NewCommandHandler(subscribers, sender, gateway, detector, model, cooldownTable, responseIngest, cfg, appLogger)
	webhookAuth := transport.NewWebhookAuth(cfg.Transport.WebhookJWTSecret)
	webhookHandler := transport.NewWebhookHandler(webhookAuth, commandHandler, botClient, appLogger)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(rest.NewRecoveryMiddleware(appLogger).Recovery())
	router.Use(rest.NewLoggingMiddleware(appLogger).RequestLogger())
	router.Use(rest.NewBodySizeMiddleware(appLogger, 1<<20).LimitBodySize())

	if redisCache != nil {
		limiter := rest.NewRedisRateLimiter(redisCache.Client(), "ratelimit:webhook:", 60, time.Minute, 5*time.Minute)
		router.Use(limiter.Middleware())
	}

	health := rest.NewHealthHandlers(gateway, model)
	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)
	router.GET("/leaderboard", health.Leaderboard)
	router.GET("/model_status", health.ModelStatus)

	webhook := rest.NewWebhookHandlers(webhookHandler)
	router.POST("/webhook", webhook.HandleWebhook)

	appLogger.Info("routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		appLogger.Error("server error", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		appLogger.Info("shutdown initiated", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			appLogger.Error("graceful shutdown failed", "error", err)
			if err := server.Close(); err != nil {
				appLogger.Error("server close failed", "error", err)
			}
		}

		appLogger.Info("server stopped")
	}
}
