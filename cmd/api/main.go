package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medtrack/scheduler-api/internal/config"
	"github.com/medtrack/scheduler-api/internal/handler"
	scheduleHandler "github.com/medtrack/scheduler-api/internal/handler/schedule"
	"github.com/medtrack/scheduler-api/internal/middleware"
	"github.com/medtrack/scheduler-api/internal/router"
	schedulingService "github.com/medtrack/scheduler-api/internal/service/scheduling"
	"github.com/medtrack/scheduler-api/internal/store/postgrest"
	"github.com/medtrack/scheduler-api/internal/worker"
	"github.com/medtrack/scheduler-api/pkg/auth"
	"github.com/medtrack/scheduler-api/pkg/logger"
	"github.com/medtrack/scheduler-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    true,
	})
	log.Logger = appLogger.ZL

	m := metrics.NewMetrics("scheduler")

	// Remote appointment store client
	store := postgrest.NewClient(cfg.Store, appLogger, m)

	// Scheduling service
	schedSvc := schedulingService.NewService(store, appLogger, m, schedulingService.Options{
		SessionTTL: cfg.Scheduler.SessionTTL,
		SummaryTTL: cfg.Scheduler.SummaryTTL,
	})

	// Middleware and handlers
	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(tokens)
	h := handler.NewHandler(store)
	scheduleH := scheduleHandler.NewHandler(schedSvc)

	r := router.NewRouter(authMiddleware, scheduleH, h, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:     middleware.DefaultCORSConfig(),
		MetricsPrefix:  "scheduler_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Reminder workflow trigger
	reminder := worker.NewReminderWorker(cfg.Reminder.WebhookURL, cfg.Reminder.Interval, appLogger, m)
	if cfg.Reminder.Enabled {
		if err := reminder.Start(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to start reminder worker")
		}
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("scheduler API started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	reminder.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
