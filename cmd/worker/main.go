package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medtrack/scheduler-api/internal/config"
	"github.com/medtrack/scheduler-api/internal/worker"
	"github.com/medtrack/scheduler-api/pkg/logger"
	"github.com/medtrack/scheduler-api/pkg/metrics"
)

// Standalone reminder trigger. Runs the same workflow webhook schedule as
// the API process for deployments that keep the trigger out of the
// request path.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      zerolog.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})
	log.Logger = appLogger.ZL

	m := metrics.NewMetrics("scheduler_worker")

	reminder := worker.NewReminderWorker(cfg.Reminder.WebhookURL, cfg.Reminder.Interval, appLogger, m)
	if err := reminder.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to start reminder worker")
	}

	setupHealthCheck(appLogger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down...")
	reminder.Stop()
}

func setupHealthCheck(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}
