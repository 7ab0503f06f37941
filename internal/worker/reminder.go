package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/medtrack/scheduler-api/pkg/logger"
	"github.com/medtrack/scheduler-api/pkg/metrics"
)

// ReminderWorker periodically pokes the workflow-automation webhook that
// sends appointment reminders. Triggers are fire-and-forget: the webhook
// runs its own pipeline and failures here only get logged and counted,
// they never affect scheduling correctness.
type ReminderWorker struct {
	webhookURL string
	interval   time.Duration
	http       *http.Client
	logger     *logger.Logger
	metrics    *metrics.Metrics
	cron       *cron.Cron
}

func NewReminderWorker(webhookURL string, interval time.Duration, log *logger.Logger, m *metrics.Metrics) *ReminderWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReminderWorker{
		webhookURL: webhookURL,
		interval:   interval,
		http:       &http.Client{Timeout: 10 * time.Second},
		logger:     log,
		metrics:    m,
	}
}

// Start fires one trigger immediately, then on every interval. It returns
// after scheduling; Stop tears the schedule down.
func (w *ReminderWorker) Start(ctx context.Context) error {
	if w.cron != nil {
		return fmt.Errorf("reminder worker already started")
	}

	w.Trigger(ctx)

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", w.interval), func() {
		w.Trigger(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder trigger: %w", err)
	}
	c.Start()
	w.cron = c
	w.logger.ZL.Info().Str("webhook", w.webhookURL).Dur("interval", w.interval).Msg("reminder worker started")
	return nil
}

// Stop cancels the schedule and waits for an in-flight trigger to finish.
func (w *ReminderWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.cron = nil
	w.logger.ZL.Info().Msg("reminder worker stopped")
}

// Trigger posts the trivial wake-up payload to the webhook.
func (w *ReminderWorker) Trigger(ctx context.Context) {
	payload, _ := json.Marshal(map[string]string{"triggeredBy": "scheduler-api"})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(payload))
	if err != nil {
		w.fail(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		w.fail(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.fail(fmt.Errorf("webhook returned %s", resp.Status))
		return
	}

	w.metrics.ReminderTriggers.Inc()
	w.logger.ZL.Debug().Msg("reminder workflow triggered")
}

func (w *ReminderWorker) fail(err error) {
	w.metrics.ReminderFailures.Inc()
	w.logger.ZL.Error().Err(err).Msg("failed to trigger reminder workflow")
}
