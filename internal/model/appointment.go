package model

import (
	"fmt"
	"time"
)

// AppointmentRecord is a row in the remote appointment store.
type AppointmentRecord struct {
	ID               string  `json:"id"`
	DoctorID         string  `json:"doctor_id"`
	PatientName      *string `json:"patient_name"`
	PatientPhone     *string `json:"patient_phone,omitempty"`
	PatientCondition *string `json:"patient_condition,omitempty"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// AppointmentSummary is the narrow projection used by the reminder-status
// list. It is doctor-scoped, not patient-scoped.
type AppointmentSummary struct {
	ID           string  `json:"id"`
	PatientName  *string `json:"patient_name"`
	StartTime    string  `json:"start_time"`
	ReminderSent *bool   `json:"reminder_sent"`
}

// SchedulingContext scopes every store and model operation to an
// authenticated doctor and a selected patient. It is always passed
// explicitly, never read from ambient state.
type SchedulingContext struct {
	DoctorID    string `json:"doctor_id"`
	PatientName string `json:"patient_name"`
}

func (sc SchedulingContext) Key() string {
	return sc.DoctorID + "|" + sc.PatientName
}

// ToCalendarEvent maps a remote row into a confirmed appointment event.
// Rows that fail schema validation are rejected rather than half-mapped.
func (r *AppointmentRecord) ToCalendarEvent() (CalendarEvent, error) {
	if r.ID == "" {
		return CalendarEvent{}, fmt.Errorf("appointment row missing id")
	}
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return CalendarEvent{}, fmt.Errorf("appointment %s: invalid start_time %q: %w", r.ID, r.StartTime, err)
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return CalendarEvent{}, fmt.Errorf("appointment %s: invalid end_time %q: %w", r.ID, r.EndTime, err)
	}

	ev := CalendarEvent{
		ID:    r.ID,
		Title: "Appointment",
		Start: start,
		End:   end,
		Kind:  EventKindAppointment,
	}
	if r.PatientName != nil && *r.PatientName != "" {
		ev.Title = "Appointment: " + *r.PatientName
		p := &Patient{
			Name:   *r.PatientName,
			Avatar: AvatarInitials(*r.PatientName),
		}
		if r.PatientPhone != nil {
			p.Phone = *r.PatientPhone
		}
		if r.PatientCondition != nil {
			p.Condition = *r.PatientCondition
		}
		ev.Patient = p
	}
	return ev, nil
}
