package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/medtrack/scheduler-api/internal/model"
	"github.com/medtrack/scheduler-api/internal/scheduler"
	"github.com/medtrack/scheduler-api/pkg/logger"
	"github.com/medtrack/scheduler-api/pkg/metrics"
)

// Store is the remote appointment store boundary.
type Store interface {
	List(ctx context.Context, scope model.SchedulingContext) ([]model.AppointmentRecord, error)
	ListAll(ctx context.Context, doctorID string) ([]model.AppointmentSummary, error)
	Insert(ctx context.Context, rec model.AppointmentRecord) ([]model.AppointmentRecord, error)
	Delete(ctx context.Context, id string) error
}

// Options tunes session and summary cache lifetimes.
type Options struct {
	SessionTTL time.Duration
	SummaryTTL time.Duration
}

// Service owns the scheduling sessions. A session is the server-side
// analog of a mounted scheduling view: it is created on first access for
// a (doctor, patient) scope and discarded after idle expiry.
type Service struct {
	store   Store
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	sessions  *gocache.Cache
	summaries *gocache.Cache
}

func NewService(store Store, log *logger.Logger, m *metrics.Metrics, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.SummaryTTL <= 0 {
		opts.SummaryTTL = time.Minute
	}

	sessions := gocache.New(opts.SessionTTL, opts.SessionTTL)
	svc := &Service{
		store:     store,
		logger:    log,
		metrics:   m,
		sessions:  sessions,
		summaries: gocache.New(opts.SummaryTTL, 5*time.Minute),
	}
	sessions.OnEvicted(func(string, interface{}) {
		m.ActiveSessions.Dec()
	})
	return svc
}

// Session returns the live session for the scope, loading the event list
// from the store on first access. Sliding expiration keeps active scopes
// alive.
func (s *Service) Session(ctx context.Context, scope model.SchedulingContext) (*Session, error) {
	if scope.DoctorID == "" {
		return nil, fmt.Errorf("scheduling context missing doctor id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.sessions.Get(scope.Key()); ok {
		sess := cached.(*Session)
		s.sessions.SetDefault(scope.Key(), sess)
		return sess, nil
	}

	sess := &Session{
		scope: scope,
		model: scheduler.NewEventModel(),
		svc:   s,
	}
	sess.load(ctx)
	s.sessions.SetDefault(scope.Key(), sess)
	s.metrics.ActiveSessions.Inc()
	return sess, nil
}

// Close discards the session for the scope, the unmount analog.
func (s *Service) Close(scope model.SchedulingContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Delete(scope.Key())
}

// Summaries returns the doctor-wide reminder-status list. Failures degrade
// to an empty list: callers must treat "no appointments" as a valid steady
// state, not a failure signal.
func (s *Service) Summaries(ctx context.Context, doctorID string) []model.AppointmentSummary {
	if doctorID == "" {
		return []model.AppointmentSummary{}
	}
	if cached, ok := s.summaries.Get(doctorID); ok {
		return cached.([]model.AppointmentSummary)
	}
	return s.refreshSummaries(ctx, doctorID)
}

func (s *Service) refreshSummaries(ctx context.Context, doctorID string) []model.AppointmentSummary {
	summaries, err := s.store.ListAll(ctx, doctorID)
	if err != nil {
		s.logger.ZL.Error().Err(err).Str("doctor_id", doctorID).Msg("failed to fetch appointment summaries")
		return []model.AppointmentSummary{}
	}
	if summaries == nil {
		summaries = []model.AppointmentSummary{}
	}
	s.summaries.SetDefault(doctorID, summaries)
	return summaries
}
