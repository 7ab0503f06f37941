package scheduler

import (
	"time"

	"github.com/medtrack/scheduler-api/internal/model"
)

// SlotInfo is the resolver's classification of one grid cell.
type SlotInfo struct {
	Blocked     bool                  `json:"blocked"`
	Appointment *model.CalendarEvent  `json:"appointment,omitempty"`
	Events      []model.CalendarEvent `json:"events,omitempty"`
}

// Classify derives the occupancy of the (day, hour) cell from the current
// event snapshot.
//
// Occupancy is decided by exact start equality, not range overlap: all
// events in this model are slot-aligned by construction, so an event only
// claims the cell whose key equals its start. The Events listing mirrors
// what the cell renders, events starting within the slot, with blocked
// markers filtered out (their only visible effect is the background).
func (m *EventModel) Classify(day time.Time, hour int) SlotInfo {
	slotStart := SlotStart(day, hour)
	slotEnd := slotStart.Add(SlotDuration)

	info := SlotInfo{}
	for _, ev := range m.events {
		switch ev.Kind {
		case model.EventKindBlocked:
			if ev.Start.Equal(slotStart) {
				info.Blocked = true
			}
			continue
		case model.EventKindAppointment:
			if info.Appointment == nil && ev.Start.Equal(slotStart) {
				appt := ev
				info.Appointment = &appt
			}
		}
		if !ev.Start.Before(slotStart) && ev.Start.Before(slotEnd) {
			info.Events = append(info.Events, ev)
		}
	}
	return info
}

// ClassifyWeek resolves every cell of the window, keyed day-major. Hour
// rows cover the full day even though the dashboard renders a sub-range.
func (m *EventModel) ClassifyWeek(w WeekWindow) [][]SlotInfo {
	grid := make([][]SlotInfo, len(w.Days))
	for d, day := range w.Days {
		row := make([]SlotInfo, HoursPerDay)
		for h := 0; h < HoursPerDay; h++ {
			row[h] = m.Classify(day, h)
		}
		grid[d] = row
	}
	return grid
}
