// Package calendar holds the day-granularity date helpers shared by the planners and reports.
// All helpers keep the location of their input, so callers pick the farm timezone once.
package calendar

import (
	"fmt"
	"time"
)

// DayLayout is the YYYY-MM-DD layout used for sowing-log keys and CSV dates.
const DayLayout = "2006-01-02"

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// AddDays moves t by n calendar days, keeping wall-clock time across DST changes.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Format renders t as YYYY-MM-DD in its own location.
func Format(t time.Time) string {
	return t.Format(DayLayout)
}

// Parse reads a YYYY-MM-DD value as midnight in loc.
func Parse(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if len(value) > len(DayLayout) {
		value = value[:len(DayLayout)]
	}
	t, err := time.ParseInLocation(DayLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", value, err)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	return Format(a) == Format(b.In(a.Location()))
}

// InRange reports whether t lies in [start, endOfDay(end)].
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(EndOfDay(end))
}

// MondayStart returns midnight of the Monday of t's week.
func MondayStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t.AddDate(0, 0, -daysSinceMonday))
}

// MonthStart returns midnight of the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
