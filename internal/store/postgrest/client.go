package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/medtrack/scheduler-api/internal/model"
	"github.com/medtrack/scheduler-api/pkg/circuitbreaker"
	"github.com/medtrack/scheduler-api/pkg/logger"
	"github.com/medtrack/scheduler-api/pkg/metrics"
)

// Config holds the remote appointment store connection settings. Auth is
// service-level: a static API key plus bearer token, not per-user.
type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	BearerToken string        `mapstructure:"bearer_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures int           `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// Client talks to the appointment table through its REST interface using
// PostgREST query conventions.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *logger.Logger
	metrics *metrics.Metrics
	breaker *circuitbreaker.CircuitBreaker
}

func NewClient(cfg Config, log *logger.Logger, m *metrics.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  log,
		metrics: m,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "appointment-store",
			MaxFailures: cfg.MaxFailures,
			Timeout:     cfg.OpenTimeout,
		}),
	}
}

// StoreError carries the parsed failure detail of a non-2xx store response.
type StoreError struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Hint       string `json:"hint,omitempty"`
	Details    string `json:"details,omitempty"`
}

// Error prefers the server's own detail and falls back to status text.
func (e *StoreError) Error() string {
	for _, s := range []string{e.Message, e.Hint, e.Details} {
		if s != "" {
			return s
		}
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// List fetches the appointments visible to one (doctor, patient) scope.
func (c *Client) List(ctx context.Context, scope model.SchedulingContext) ([]model.AppointmentRecord, error) {
	q := url.Values{}
	q.Set("doctor_id", "eq."+scope.DoctorID)
	q.Set("patient_name", "eq."+scope.PatientName)
	q.Set("select", "*")

	var records []model.AppointmentRecord
	if err := c.do(ctx, "list", http.MethodGet, q, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListAll fetches the doctor-wide reminder-status projection, ordered by
// start time.
func (c *Client) ListAll(ctx context.Context, doctorID string) ([]model.AppointmentSummary, error) {
	q := url.Values{}
	q.Set("doctor_id", "eq."+doctorID)
	q.Set("select", "id,patient_name,start_time,reminder_sent")
	q.Set("order", "start_time.asc")

	var summaries []model.AppointmentSummary
	if err := c.do(ctx, "list_all", http.MethodGet, q, nil, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Insert persists a new appointment row and returns the stored
// representation.
func (c *Client) Insert(ctx context.Context, rec model.AppointmentRecord) ([]model.AppointmentRecord, error) {
	var stored []model.AppointmentRecord
	if err := c.do(ctx, "insert", http.MethodPost, nil, &rec, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Delete removes the appointment row by id. Deleting an already-deleted
// row is a no-op at the store.
func (c *Client) Delete(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return c.do(ctx, "delete", http.MethodDelete, q, nil, nil)
}

// Ping probes the store for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")
	return c.do(ctx, "ping", http.MethodGet, q, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method string, query url.Values, body, out interface{}) error {
	start := time.Now()
	err := c.breaker.Execute(func() error {
		return c.roundTrip(ctx, method, query, body, out)
	})
	c.observe(op, start, err)
	return err
}

func (c *Client) roundTrip(ctx context.Context, method string, query url.Values, body, out interface{}) error {
	endpoint := c.cfg.BaseURL + "/appointments"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.parseError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode store response: %w", err)
	}
	return nil
}

func (c *Client) parseError(resp *http.Response) error {
	storeErr := &StoreError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
	}
	raw, err := io.ReadAll(resp.Body)
	if err == nil && len(raw) > 0 {
		if jsonErr := json.Unmarshal(raw, storeErr); jsonErr != nil {
			c.logger.ZL.Debug().Str("body", string(raw)).Msg("could not parse store error response")
		}
	}
	return storeErr
}

func (c *Client) observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.StoreOperations.WithLabelValues(op, status).Inc()
	c.metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
