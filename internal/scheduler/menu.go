package scheduler

import "time"

// SlotState is the mutually exclusive state of a clicked slot, computed
// fresh on every menu open and never persisted between opens.
type SlotState string

const (
	SlotBlocked        SlotState = "blocked"
	SlotHasAppointment SlotState = "has_appointment"
	SlotBookingPending SlotState = "booking_pending"
	SlotFree           SlotState = "free"
)

// Action is a user-selectable slot mutation.
type Action string

const (
	ActionBlock             Action = "block"
	ActionUnblock           Action = "unblock"
	ActionBook              Action = "book"
	ActionCancelAppointment Action = "cancel_appointment"
	ActionCancelBooking     Action = "cancel_booking"
)

// SlotMenu is the action set offered for one slot. A blocked marker wins
// over an appointment in the same cell, which wins over a pending booking
// selection.
type SlotMenu struct {
	Slot    SlotRef   `json:"slot"`
	State   SlotState `json:"state"`
	Actions []Action  `json:"actions"`
	Info    SlotInfo  `json:"info"`
}

// OpenMenu computes the menu for the (day, hour) cell from resolver output.
func (m *EventModel) OpenMenu(day time.Time, hour int) SlotMenu {
	info := m.Classify(day, hour)
	menu := SlotMenu{
		Slot: SlotRef{Day: StartOfDay(day), Hour: hour},
		Info: info,
	}

	switch {
	case info.Blocked:
		menu.State = SlotBlocked
		menu.Actions = []Action{ActionUnblock}
	case info.Appointment != nil:
		menu.State = SlotHasAppointment
		menu.Actions = []Action{ActionBlock, ActionCancelAppointment}
	case m.BookingSelected(day, hour):
		menu.State = SlotBookingPending
		menu.Actions = []Action{ActionBlock, ActionCancelBooking}
	default:
		menu.State = SlotFree
		menu.Actions = []Action{ActionBlock, ActionBook}
	}
	return menu
}

// Allows reports whether the menu offers the action.
func (s SlotMenu) Allows(a Action) bool {
	for _, offered := range s.Actions {
		if offered == a {
			return true
		}
	}
	return false
}
