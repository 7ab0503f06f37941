package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/scheduler-api/internal/model"
)

func appointmentAt(id string, start time.Time) model.CalendarEvent {
	return model.CalendarEvent{
		ID:    id,
		Title: "Appointment: Jane Doe",
		Start: start,
		End:   start.Add(time.Hour),
		Kind:  model.EventKindAppointment,
		Patient: &model.Patient{
			Name:   "Jane Doe",
			Avatar: "JD",
		},
	}
}

func TestClassifyFreeSlot(t *testing.T) {
	m := NewEventModel()
	info := m.Classify(date(2024, 3, 4), 9)

	assert.False(t, info.Blocked)
	assert.Nil(t, info.Appointment)
	assert.Empty(t, info.Events)
}

func TestClassifyAppointment(t *testing.T) {
	day := date(2024, 3, 4)
	m := NewEventModel(appointmentAt("apt-1", SlotStart(day, 9)))

	info := m.Classify(day, 9)
	require.NotNil(t, info.Appointment)
	assert.Equal(t, "apt-1", info.Appointment.ID)
	assert.False(t, info.Blocked)
	assert.Len(t, info.Events, 1)

	// neighboring slots stay free
	assert.Nil(t, m.Classify(day, 8).Appointment)
	assert.Nil(t, m.Classify(day, 10).Appointment)
}

func TestClassifyExactStartEqualityOnly(t *testing.T) {
	day := date(2024, 3, 4)
	// event starting mid-hour is not slot-aligned; no slot claims it as
	// its appointment
	m := NewEventModel(appointmentAt("apt-odd", SlotStart(day, 9).Add(30*time.Minute)))

	assert.Nil(t, m.Classify(day, 9).Appointment)
	assert.Nil(t, m.Classify(day, 10).Appointment)
	// it still lists among the 09:00 cell's rendered events
	assert.Len(t, m.Classify(day, 9).Events, 1)
}

func TestClassifyBlockedMarkerHiddenFromEvents(t *testing.T) {
	day := date(2024, 3, 4)
	m := NewEventModel()
	_, added := m.Block(day, 9)
	require.True(t, added)

	info := m.Classify(day, 9)
	assert.True(t, info.Blocked)
	assert.Nil(t, info.Appointment)
	assert.Empty(t, info.Events, "blocked markers only affect the background")
}

func TestClassifyBlockAndAppointmentCoexist(t *testing.T) {
	day := date(2024, 3, 4)
	m := NewEventModel(appointmentAt("apt-1", SlotStart(day, 9)))
	_, added := m.Block(day, 9)
	require.True(t, added)

	info := m.Classify(day, 9)
	assert.True(t, info.Blocked)
	require.NotNil(t, info.Appointment, "appointment still renders in a blocked cell")
	assert.Equal(t, "apt-1", info.Appointment.ID)
	assert.Len(t, info.Events, 1)
}

func TestClassifyAtMostOneAppointment(t *testing.T) {
	day := date(2024, 3, 4)
	start := SlotStart(day, 9)
	m := NewEventModel(appointmentAt("apt-1", start), appointmentAt("apt-2", start))

	info := m.Classify(day, 9)
	require.NotNil(t, info.Appointment)
	assert.Equal(t, "apt-1", info.Appointment.ID)
}

func TestClassifyWeekDimensions(t *testing.T) {
	m := NewEventModel()
	w := NewWeekWindow(date(2024, 3, 6))

	grid := m.ClassifyWeek(w)
	require.Len(t, grid, 7)
	for _, row := range grid {
		assert.Len(t, row, 24)
	}
}
