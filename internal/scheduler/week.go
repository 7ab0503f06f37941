package scheduler

import "time"

// SlotDuration is the fixed grid granularity. Every event kind spans
// exactly one slot.
const SlotDuration = time.Hour

const HoursPerDay = 24

// WeekWindow is the Monday-start 7-day window containing its anchor date.
type WeekWindow struct {
	Anchor time.Time
	Days   []time.Time
}

// NewWeekWindow builds the window for the week containing anchor.
func NewWeekWindow(anchor time.Time) WeekWindow {
	day := StartOfDay(anchor)
	// time.Weekday is Sunday-based; shift so Monday is day zero.
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)

	days := make([]time.Time, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return WeekWindow{Anchor: anchor, Days: days}
}

func (w WeekWindow) Start() time.Time { return w.Days[0] }
func (w WeekWindow) End() time.Time   { return w.Days[6] }

func (w WeekWindow) Previous() WeekWindow {
	return NewWeekWindow(w.Anchor.AddDate(0, 0, -7))
}

func (w WeekWindow) Next() WeekWindow {
	return NewWeekWindow(w.Anchor.AddDate(0, 0, 7))
}

// Current resets the window to the week containing now.
func (w WeekWindow) Current(now time.Time) WeekWindow {
	return NewWeekWindow(now)
}

// Hours returns the ordered hour rows of the grid. The dashboard renders
// only a sub-range, but slot addressing covers the full day.
func Hours() []int {
	hours := make([]int, HoursPerDay)
	for i := range hours {
		hours[i] = i
	}
	return hours
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SlotStart is the addressable key of the (day, hour) cell.
func SlotStart(day time.Time, hour int) time.Time {
	return StartOfDay(day).Add(time.Duration(hour) * SlotDuration)
}
