package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/scheduler-api/internal/model"
	"github.com/medtrack/scheduler-api/internal/scheduler"
)

// Outcome is the terminal phase of a two-phase mutation.
type Outcome string

const (
	// OutcomeCommitted means the store confirmed the mutation and the
	// local model was updated.
	OutcomeCommitted Outcome = "committed"
	// OutcomeRejected means the mutation was refused before any remote
	// call (invalid state, missing identity, no target).
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means the remote call failed; local state is
	// untouched.
	OutcomeFailed Outcome = "failed"
)

// MutationResult reports the outcome of a slot action. Mutations never
// return a bare bool: the intermediate pending phase must never be
// observable as success.
type MutationResult struct {
	Outcome Outcome              `json:"outcome"`
	Message string               `json:"message,omitempty"`
	Event   *model.CalendarEvent `json:"event,omitempty"`
}

func (r MutationResult) Committed() bool { return r.Outcome == OutcomeCommitted }

// Session serializes all scheduler operations for one (doctor, patient)
// scope. The mutex is the server-side analog of the modal-exclusive slot
// menu: no two mutations of one scope ever race.
type Session struct {
	mu    sync.Mutex
	scope model.SchedulingContext
	model *scheduler.EventModel
	svc   *Service
}

func (s *Session) Scope() model.SchedulingContext { return s.scope }

// load populates the model from the store. Missing identity and network
// failures both degrade to an empty event list; the empty steady state is
// not distinguishable from a failed read by design.
func (s *Session) load(ctx context.Context) {
	if s.scope.DoctorID == "" || s.scope.PatientName == "" {
		s.svc.logger.ZL.Debug().
			Str("doctor_id", s.scope.DoctorID).
			Msg("incomplete scheduling scope, skipping appointment fetch")
		return
	}

	records, err := s.svc.store.List(ctx, s.scope)
	if err != nil {
		s.svc.logger.ZL.Error().Err(err).
			Str("doctor_id", s.scope.DoctorID).
			Str("patient", s.scope.PatientName).
			Msg("failed to fetch appointments, starting with empty calendar")
		return
	}

	events := make([]model.CalendarEvent, 0, len(records))
	for i := range records {
		ev, err := records[i].ToCalendarEvent()
		if err != nil {
			s.svc.logger.ZL.Warn().Err(err).Msg("skipping malformed appointment row")
			continue
		}
		events = append(events, ev)
	}
	s.model.Replace(events)
}

// Reload refetches the scoped appointment list from the store.
func (s *Session) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
}

// Events returns a snapshot of the session's calendar.
func (s *Session) Events() []model.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Events()
}

// Classify resolves one grid cell.
func (s *Session) Classify(day time.Time, hour int) scheduler.SlotInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Classify(day, hour)
}

// Grid resolves the full week window.
func (s *Session) Grid(w scheduler.WeekWindow) [][]scheduler.SlotInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.ClassifyWeek(w)
}

// Menu computes the action menu for a slot, fresh on every open.
func (s *Session) Menu(day time.Time, hour int) scheduler.SlotMenu {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.OpenMenu(day, hour)
}

// Book persists a new appointment for the slot, then mirrors it locally.
// The local model gains the event only once the store confirms; on any
// failure the slot still classifies as free.
func (s *Session) Book(ctx context.Context, day time.Time, hour int) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scope.PatientName == "" {
		return s.done("book", MutationResult{Outcome: OutcomeRejected, Message: "no patient selected"})
	}
	info := s.model.Classify(day, hour)
	if info.Blocked {
		return s.done("book", MutationResult{Outcome: OutcomeRejected, Message: "time slot is blocked"})
	}
	if info.Appointment != nil {
		return s.done("book", MutationResult{Outcome: OutcomeRejected, Message: "time slot already has an appointment"})
	}

	start := scheduler.SlotStart(day, hour)
	end := start.Add(scheduler.SlotDuration)
	patient := s.scope.PatientName
	rec := model.AppointmentRecord{
		ID:          uuid.NewString(),
		DoctorID:    s.scope.DoctorID,
		PatientName: &patient,
		StartTime:   start.Format(time.RFC3339),
		EndTime:     end.Format(time.RFC3339),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := s.svc.store.Insert(ctx, rec); err != nil {
		s.svc.logger.ZL.Error().Err(err).Time("start", start).Msg("failed to book appointment")
		return s.done("book", MutationResult{Outcome: OutcomeFailed, Message: err.Error()})
	}

	ev := model.CalendarEvent{
		ID:    rec.ID,
		Title: "Appointment: " + patient,
		Start: start,
		End:   end,
		Kind:  model.EventKindAppointment,
		Patient: &model.Patient{
			Name:   patient,
			Avatar: model.AvatarInitials(patient),
		},
	}
	s.model.Append(ev)
	s.model.ClearBooking()
	s.svc.refreshSummaries(ctx, s.scope.DoctorID)
	return s.done("book", MutationResult{Outcome: OutcomeCommitted, Event: &ev})
}

// Cancel deletes the appointment occupying the slot. Local removal happens
// only after the store confirms the delete.
func (s *Session) Cancel(ctx context.Context, day time.Time, hour int) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := s.model.Classify(day, hour)
	if info.Appointment == nil {
		return s.done("cancel", MutationResult{Outcome: OutcomeRejected, Message: "no appointment found at this time slot"})
	}
	appt := *info.Appointment

	if err := s.svc.store.Delete(ctx, appt.ID); err != nil {
		s.svc.logger.ZL.Error().Err(err).Str("appointment_id", appt.ID).Msg("failed to cancel appointment")
		return s.done("cancel", MutationResult{Outcome: OutcomeFailed, Message: err.Error()})
	}

	s.model.RemoveByID(appt.ID)
	s.svc.refreshSummaries(ctx, s.scope.DoctorID)
	return s.done("cancel", MutationResult{Outcome: OutcomeCommitted, Event: &appt})
}

// Block inserts a session-local blocked marker. Blocks are never persisted
// remotely; they live and die with the session. Blocking an already
// blocked slot is a no-op.
func (s *Session) Block(day time.Time, hour int) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, added := s.model.Block(day, hour)
	if !added {
		return s.done("block", MutationResult{Outcome: OutcomeCommitted, Message: "time slot already blocked"})
	}
	return s.done("block", MutationResult{Outcome: OutcomeCommitted, Event: &ev})
}

// Unblock removes the blocked marker, if present.
func (s *Session) Unblock(day time.Time, hour int) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.model.Unblock(day, hour) {
		return s.done("unblock", MutationResult{Outcome: OutcomeCommitted, Message: "time slot was not blocked"})
	}
	return s.done("unblock", MutationResult{Outcome: OutcomeCommitted})
}

// SelectBooking marks the slot as a pending, unconfirmed booking.
func (s *Session) SelectBooking(day time.Time, hour int) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := s.model.Classify(day, hour)
	if info.Blocked || info.Appointment != nil {
		return s.done("select", MutationResult{Outcome: OutcomeRejected, Message: "time slot is not free"})
	}
	s.model.SelectBooking(day, hour)
	return s.done("select", MutationResult{Outcome: OutcomeCommitted})
}

// CancelBooking clears the pending booking selection. Nothing was
// persisted yet, so there is no remote interaction.
func (s *Session) CancelBooking(day time.Time, hour int) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.model.ClearBooking()
	return s.done("cancel_booking", MutationResult{Outcome: OutcomeCommitted})
}

// AcceptSuggestion confirms an AI-suggested event as a real appointment.
func (s *Session) AcceptSuggestion(id string) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.model.AcceptSuggestion(id) {
		return s.done("accept_suggestion", MutationResult{Outcome: OutcomeRejected, Message: "suggestion not found"})
	}
	return s.done("accept_suggestion", MutationResult{Outcome: OutcomeCommitted})
}

// RejectSuggestion dismisses an AI-suggested event.
func (s *Session) RejectSuggestion(id string) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.model.RejectSuggestion(id) {
		return s.done("reject_suggestion", MutationResult{Outcome: OutcomeRejected, Message: "suggestion not found"})
	}
	return s.done("reject_suggestion", MutationResult{Outcome: OutcomeCommitted})
}

func (s *Session) done(action string, res MutationResult) MutationResult {
	s.svc.metrics.SlotActions.WithLabelValues(action, string(res.Outcome)).Inc()
	return res
}
