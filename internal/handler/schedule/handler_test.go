package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/scheduler-api/internal/model"
	"github.com/medtrack/scheduler-api/internal/service/scheduling"
	"github.com/medtrack/scheduler-api/pkg/logger"
	"github.com/medtrack/scheduler-api/pkg/metrics"
)

// memStore is a minimal in-memory appointment store for handler tests.
type memStore struct {
	mu        sync.Mutex
	records   []model.AppointmentRecord
	insertErr error
}

func (m *memStore) List(ctx context.Context, scope model.SchedulingContext) ([]model.AppointmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AppointmentRecord
	for _, r := range m.records {
		if r.DoctorID == scope.DoctorID && r.PatientName != nil && *r.PatientName == scope.PatientName {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListAll(ctx context.Context, doctorID string) ([]model.AppointmentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.AppointmentSummary{}
	for _, r := range m.records {
		if r.DoctorID == doctorID {
			out = append(out, model.AppointmentSummary{ID: r.ID, PatientName: r.PatientName, StartTime: r.StartTime})
		}
	}
	return out, nil
}

func (m *memStore) Insert(ctx context.Context, rec model.AppointmentRecord) ([]model.AppointmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	m.records = append(m.records, rec)
	return []model.AppointmentRecord{rec}, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			break
		}
	}
	return nil
}

func setupRouter(t *testing.T, store scheduling.Store) (*gin.Engine, *scheduling.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := scheduling.NewService(store, log, metrics.New("test"), scheduling.Options{})

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set("doctor_id", "doc-1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func slotBody(patient, day string, hour int) gin.H {
	return gin.H{"patient": patient, "day": day, "hour": hour}
}

func TestGetWeekMondayStart(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/schedule/week?anchor=2024-03-06", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Start string   `json:"start"`
		End   string   `json:"end"`
		Days  []string `json:"days"`
		Hours []int    `json:"hours"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "2024-03-04", data.Start)
	assert.Equal(t, "2024-03-10", data.End)
	require.Len(t, data.Days, 7)
	assert.Equal(t, "2024-03-04", data.Days[0])
	assert.Len(t, data.Hours, 24)
}

func TestGetWeekRejectsBadAnchor(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})
	w := doJSON(t, r, http.MethodGet, "/api/v1/schedule/week?anchor=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookSlotCommitted(t *testing.T) {
	store := &memStore{}
	r, _ := setupRouter(t, store)

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/book", slotBody("Jane Doe", "2024-03-04", 9))
	require.Equal(t, http.StatusOK, w.Code)

	var res scheduling.MutationResult
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, scheduling.OutcomeCommitted, res.Outcome)
	require.NotNil(t, res.Event)
	assert.Equal(t, "Appointment: Jane Doe", res.Event.Title)

	require.Len(t, store.records, 1)
	assert.Equal(t, "doc-1", store.records[0].DoctorID)
}

func TestBookSlotConflictOnOccupied(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})

	body := slotBody("Jane Doe", "2024-03-04", 9)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/book", body).Code)

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/book", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error", decodeEnvelope(t, w).Status)
}

func TestBookSlotBadGatewayOnStoreError(t *testing.T) {
	store := &memStore{insertErr: errors.New("insert refused")}
	r, _ := setupRouter(t, store)

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/book", slotBody("Jane Doe", "2024-03-04", 9))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "insert refused", decodeEnvelope(t, w).Message)
}

func TestBookSlotValidatesPayload(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing patient", gin.H{"day": "2024-03-04", "hour": 9}},
		{"bad day", slotBody("Jane Doe", "monday", 9)},
		{"hour too large", slotBody("Jane Doe", "2024-03-04", 24)},
		{"negative hour", slotBody("Jane Doe", "2024-03-04", -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/book", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCancelSlotNotFoundOnEmpty(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/cancel", slotBody("Jane Doe", "2024-03-04", 9))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelSlotRemovesBookedAppointment(t *testing.T) {
	store := &memStore{}
	r, _ := setupRouter(t, store)

	body := slotBody("Jane Doe", "2024-03-04", 9)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/book", body).Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/cancel", body).Code)
	assert.Empty(t, store.records)
}

func TestBlockThenMenuShowsUnblock(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})

	body := slotBody("Jane Doe", "2024-03-04", 9)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/block", body).Code)

	w := doJSON(t, r, http.MethodGet, "/api/v1/schedule/slots/menu?patient=Jane+Doe&day=2024-03-04&hour=9", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var menu struct {
		State   string   `json:"state"`
		Actions []string `json:"actions"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &menu))
	assert.Equal(t, "blocked", menu.State)
	assert.Equal(t, []string{"unblock"}, menu.Actions)
}

func TestMenuRejectsBadHour(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})
	w := doJSON(t, r, http.MethodGet, "/api/v1/schedule/slots/menu?patient=Jane+Doe&day=2024-03-04&hour=noon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGridShape(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/schedule/grid?patient=Jane+Doe&anchor=2024-03-06", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Days []string        `json:"days"`
		Grid [][]interface{} `json:"grid"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Days, 7)
	require.Len(t, data.Grid, 7)
	assert.Len(t, data.Grid[0], 24)
}

func TestCloseSessionDropsLocalBlocks(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})

	body := slotBody("Jane Doe", "2024-03-04", 9)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/v1/schedule/slots/block", body).Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodDelete, "/api/v1/schedule/session?patient=Jane+Doe", nil).Code)

	w := doJSON(t, r, http.MethodGet, "/api/v1/schedule/slots/menu?patient=Jane+Doe&day=2024-03-04&hour=9", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var menu struct {
		State string `json:"state"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &menu))
	assert.Equal(t, "free", menu.State)
}

func TestRejectSuggestionNotFound(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})
	w := doJSON(t, r, http.MethodDelete, "/api/v1/schedule/suggestions/unknown?patient=Jane+Doe", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAppointmentsEmptySteadyState(t *testing.T) {
	r, _ := setupRouter(t, &memStore{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "success", env.Status)
	assert.JSONEq(t, "[]", string(env.Data))
}
