package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/community_alerts/internal/broadcast"
	"github.com/shenikar/community_alerts/internal/config"
	"github.com/shenikar/community_alerts/internal/events"
	v1 "github.com/shenikar/community_alerts/internal/handler/http/v1"
	"github.com/shenikar/community_alerts/internal/metrics"
	"github.com/shenikar/community_alerts/internal/repository"
	"github.com/shenikar/community_alerts/internal/service"
	"github.com/shenikar/community_alerts/internal/webhook"
	"github.com/shenikar/community_alerts/pkg/logger"
	"github.com/shenikar/community_alerts/pkg/postgres"
	redisclient "github.com/shenikar/community_alerts/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/community_alerts/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 5 * time.Second

// @title Community Alerts API
// @version 1.0
// @description Real-time community safety alerts with zone detection and community validation.
// @host localhost:8080
// @BasePath /api/v1
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel, os.Stdout)

	// Контекст фоновых задач: relay и воркер вебхуков
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Подключение к Redis: кэш алертов и очередь вебхуков
	redisClient, err := redisclient.NewRedisClient(ctx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	m := metrics.New()

	// Хаб живой ленты
	hub := broadcast.NewHub(cfg.LiveBufferSize, log, m)

	alertRepo := repository.NewAlertRepository(dbpool, redisClient, cfg.AlertCacheTTL)
	alertService := service.NewAlertService(alertRepo, hub, log)

	// События хаба уходят в очередь вебхуков, воркер доставляет их по HTTP
	webhookRelay := broadcast.NewRelay("webhook", hub, webhook.NewRedisWebhookPublisher(redisClient), log)
	webhookRelay.Start(ctx)

	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// Ретрансляция в NATS включается только при заданном NATS_URL
	var natsRelay *broadcast.Relay
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer func() {
			if err := natsPublisher.Close(); err != nil {
				log.WithError(err).Warn("Failed to drain NATS connection")
			}
		}()
		natsRelay = broadcast.NewRelay("nats", hub, natsPublisher, log)
		natsRelay.Start(ctx)
		log.WithField("url", cfg.NATSURL).Info("NATS relay started")
	}

	handler := v1.NewHandler(alertService, hub, log, cfg).WithRateLimitObserver(m)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), handler.CORS(), m.Middleware())
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Закрытие хаба завершает живые соединения: Shutdown не ждет hijacked websocket
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	cancel()
	waitStopped(shutdownCtx, log, webhookRelay.Done(), webhookWorker.Done())
	if natsRelay != nil {
		waitStopped(shutdownCtx, log, natsRelay.Done())
	}

	log.Info("Server gracefully stopped")
}

// waitStopped ждет остановки фоновых задач не дольше таймаута shutdown
func waitStopped(ctx context.Context, log *logrus.Logger, done ...<-chan struct{}) {
	for _, ch := range done {
		select {
		case <-ch:
		case <-ctx.Done():
			log.Warn("Background workers did not stop in time")
			return
		}
	}
}
