package scheduler

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/scheduler-api/internal/model"
)

// SlotRef addresses one grid cell.
type SlotRef struct {
	Day  time.Time `json:"day"`
	Hour int       `json:"hour"`
}

func (r SlotRef) Start() time.Time {
	return SlotStart(r.Day, r.Hour)
}

// EventModel owns the calendar occupancy for one (doctor, patient) scope:
// confirmed appointments from the store, session-local blocked markers and
// the pending booking selection. It is not safe for concurrent use, the
// owning session serializes access.
type EventModel struct {
	events  []model.CalendarEvent
	booking *SlotRef
}

func NewEventModel(events ...model.CalendarEvent) *EventModel {
	return &EventModel{events: events}
}

// Replace swaps in a freshly fetched event list. Session-local blocked
// markers survive the reload.
func (m *EventModel) Replace(events []model.CalendarEvent) {
	var blocks []model.CalendarEvent
	for _, ev := range m.events {
		if ev.Kind == model.EventKindBlocked {
			blocks = append(blocks, ev)
		}
	}
	m.events = append(events, blocks...)
}

// Events returns a snapshot copy of the event list.
func (m *EventModel) Events() []model.CalendarEvent {
	out := make([]model.CalendarEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *EventModel) Len() int { return len(m.events) }

// Append adds a store-confirmed event. Callers must only append after the
// remote insert succeeded.
func (m *EventModel) Append(ev model.CalendarEvent) {
	m.events = append(m.events, ev)
}

// RemoveByID prunes an event after a store-confirmed delete.
func (m *EventModel) RemoveByID(id string) bool {
	for i, ev := range m.events {
		if ev.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return true
		}
	}
	return false
}

// Block inserts a session-local blocked marker for the slot. Blocking an
// already-blocked slot is a no-op; the returned bool reports whether a
// marker was added.
func (m *EventModel) Block(day time.Time, hour int) (model.CalendarEvent, bool) {
	if m.Blocked(day, hour) {
		return model.CalendarEvent{}, false
	}
	start := SlotStart(day, hour)
	ev := model.CalendarEvent{
		ID:    uuid.NewString(),
		Title: "",
		Start: start,
		End:   start.Add(SlotDuration),
		Kind:  model.EventKindBlocked,
	}
	m.events = append(m.events, ev)
	return ev, true
}

// Unblock removes the blocked marker for the slot, if any.
func (m *EventModel) Unblock(day time.Time, hour int) bool {
	start := SlotStart(day, hour)
	for i, ev := range m.events {
		if ev.Kind == model.EventKindBlocked && ev.Start.Equal(start) {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return true
		}
	}
	return false
}

func (m *EventModel) Blocked(day time.Time, hour int) bool {
	start := SlotStart(day, hour)
	for _, ev := range m.events {
		if ev.Kind == model.EventKindBlocked && ev.Start.Equal(start) {
			return true
		}
	}
	return false
}

// SelectBooking marks a slot as a pending, unconfirmed booking selection.
// Only one selection exists at a time.
func (m *EventModel) SelectBooking(day time.Time, hour int) {
	m.booking = &SlotRef{Day: StartOfDay(day), Hour: hour}
}

func (m *EventModel) ClearBooking() {
	m.booking = nil
}

func (m *EventModel) BookingSelected(day time.Time, hour int) bool {
	if m.booking == nil {
		return false
	}
	return m.booking.Day.Equal(StartOfDay(day)) && m.booking.Hour == hour
}

// AcceptSuggestion confirms an AI-suggested event as a real appointment.
func (m *EventModel) AcceptSuggestion(id string) bool {
	for i, ev := range m.events {
		if ev.ID != id || ev.Kind != model.EventKindAISuggested {
			continue
		}
		ev.Kind = model.EventKindAppointment
		ev.AISuggested = false
		ev.Title = strings.TrimPrefix(ev.Title, "AI Suggested: ")
		m.events[i] = ev
		return true
	}
	return false
}

// RejectSuggestion drops an AI-suggested event from the calendar.
func (m *EventModel) RejectSuggestion(id string) bool {
	for i, ev := range m.events {
		if ev.ID == id && ev.Kind == model.EventKindAISuggested {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return true
		}
	}
	return false
}
