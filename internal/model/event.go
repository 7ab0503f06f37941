package model

import (
	"strings"
	"time"
)

type EventKind string

const (
	EventKindAppointment EventKind = "appointment"
	EventKindAISuggested EventKind = "ai-suggested"
	EventKindBlocked     EventKind = "blocked"
)

// Patient is the display payload attached to appointment events.
type Patient struct {
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Condition string `json:"condition,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// CalendarEvent is a slot-aligned calendar entry. All event kinds occupy
// exactly one hour: End is always Start plus one hour.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Kind        EventKind `json:"kind"`
	Patient     *Patient  `json:"patient,omitempty"`
	AISuggested bool      `json:"ai_suggested,omitempty"`
}

// Occupying reports whether the event claims its slot against bookings.
// AI suggestions are pending, they never occupy.
func (e *CalendarEvent) Occupying() bool {
	return e.Kind == EventKindAppointment || e.Kind == EventKindBlocked
}

// AvatarInitials derives the avatar fallback from a patient name,
// e.g. "Jane Doe" -> "JD".
func AvatarInitials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}
