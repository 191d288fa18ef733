package entity

import (
	"fmt"
	"time"
)

// LocalTime is a wall-clock time of day without a timezone
type LocalTime struct {
	Hour   int
	Minute int
}

// ParseLocalTime parses an "HH:MM" 24-hour string
func ParseLocalTime(value string) (LocalTime, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return LocalTime{}, fmt.Errorf("invalid time %q, use HH:MM (24-hour format)", value)
	}
	return LocalTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustLocalTime is ParseLocalTime for constants and tests
func MustLocalTime(value string) LocalTime {
	lt, err := ParseLocalTime(value)
	if err != nil {
		panic(err)
	}
	return lt
}

// Minutes returns the minutes elapsed since midnight
func (t LocalTime) Minutes() int {
	return t.Hour*60 + t.Minute
}

// On returns the absolute time at t on the calendar date of day, in day's location
func (t LocalTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

func (t LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// DeliverySchedule is the admin-authored weekly delivery plan
type DeliverySchedule struct {
	PerDay     int
	ActiveDays []time.Weekday // sorted, unique
	Times      []LocalTime
}

// Slots returns how many times of day are used on each active day
func (s *DeliverySchedule) Slots() int {
	if s.PerDay < len(s.Times) {
		return s.PerDay
	}
	return len(s.Times)
}

// QuietHours is a wrap-around window in which nothing may be scheduled.
// Start == End means no quiet hours.
type QuietHours struct {
	Start LocalTime
	End   LocalTime
}

// Contains reports whether the wall-clock time of t lies inside [Start, End)
func (q QuietHours) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	start, end := q.Start.Minutes(), q.End.Minutes()

	switch {
	case start == end:
		return false
	case start < end:
		return m >= start && m < end
	default:
		return m >= start || m < end
	}
}
