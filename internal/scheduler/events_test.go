package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/scheduler-api/internal/model"
)

func TestBlockIdempotent(t *testing.T) {
	day := date(2024, 3, 4)
	m := NewEventModel()

	_, added := m.Block(day, 9)
	assert.True(t, added)
	assert.Equal(t, 1, m.Len())

	_, added = m.Block(day, 9)
	assert.False(t, added, "blocking an already-blocked slot is a no-op")
	assert.Equal(t, 1, m.Len())
}

func TestUnblockAbsentIsNoop(t *testing.T) {
	day := date(2024, 3, 4)
	m := NewEventModel(appointmentAt("apt-1", SlotStart(day, 9)))

	assert.False(t, m.Unblock(day, 10))
	assert.Equal(t, 1, m.Len())
}

func TestBlockUnblockRoundTrip(t *testing.T) {
	day := date(2024, 3, 4)
	m := NewEventModel()

	m.Block(day, 9)
	assert.True(t, m.Blocked(day, 9))
	assert.True(t, m.Unblock(day, 9))
	assert.False(t, m.Blocked(day, 9))
	assert.Equal(t, 0, m.Len())
}

func TestRemoveByID(t *testing.T) {
	day := date(2024, 3, 4)
	m := NewEventModel(
		appointmentAt("apt-9", SlotStart(day, 9)),
		appointmentAt("apt-10", SlotStart(day, 10)),
	)

	assert.True(t, m.RemoveByID("apt-9"))
	assert.False(t, m.RemoveByID("apt-9"))

	assert.Nil(t, m.Classify(day, 9).Appointment)
	require.NotNil(t, m.Classify(day, 10).Appointment)
	assert.Equal(t, "apt-10", m.Classify(day, 10).Appointment.ID)
}

func TestReplaceKeepsLocalBlocks(t *testing.T) {
	day := date(2024, 3, 4)
	m := NewEventModel()
	m.Block(day, 9)

	m.Replace([]model.CalendarEvent{appointmentAt("apt-1", SlotStart(day, 10))})

	assert.True(t, m.Blocked(day, 9), "session-local blocks survive a reload")
	require.NotNil(t, m.Classify(day, 10).Appointment)
}

func TestBookingSelection(t *testing.T) {
	day := date(2024, 3, 4)
	m := NewEventModel()

	assert.False(t, m.BookingSelected(day, 9))
	m.SelectBooking(day, 9)
	assert.True(t, m.BookingSelected(day, 9))
	assert.False(t, m.BookingSelected(day, 10))

	// only one selection at a time
	m.SelectBooking(day, 11)
	assert.False(t, m.BookingSelected(day, 9))
	assert.True(t, m.BookingSelected(day, 11))

	m.ClearBooking()
	assert.False(t, m.BookingSelected(day, 11))
}

func TestAcceptSuggestion(t *testing.T) {
	day := date(2024, 3, 4)
	start := SlotStart(day, 14)
	m := NewEventModel(model.CalendarEvent{
		ID:          "sug-1",
		Title:       "AI Suggested: Jane Doe",
		Start:       start,
		End:         start.Add(time.Hour),
		Kind:        model.EventKindAISuggested,
		AISuggested: true,
	})

	assert.True(t, m.AcceptSuggestion("sug-1"))

	info := m.Classify(day, 14)
	require.NotNil(t, info.Appointment)
	assert.Equal(t, "Jane Doe", info.Appointment.Title)
	assert.False(t, info.Appointment.AISuggested)

	assert.False(t, m.AcceptSuggestion("sug-1"), "already confirmed")
}

func TestRejectSuggestion(t *testing.T) {
	day := date(2024, 3, 4)
	start := SlotStart(day, 14)
	m := NewEventModel(
		model.CalendarEvent{
			ID:    "sug-1",
			Title: "AI Suggested: Jane Doe",
			Start: start,
			End:   start.Add(time.Hour),
			Kind:  model.EventKindAISuggested,
		},
		appointmentAt("apt-1", SlotStart(day, 9)),
	)

	assert.True(t, m.RejectSuggestion("sug-1"))
	assert.Equal(t, 1, m.Len())

	// plain appointments cannot be rejected through the suggestion path
	assert.False(t, m.RejectSuggestion("apt-1"))
	assert.Equal(t, 1, m.Len())
}
