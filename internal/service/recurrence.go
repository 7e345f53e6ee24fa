package service

import (
	"fmt"
	"time"

	"taskflow/internal/model"
)

// startOf parses a date column and a clock column into a local time.
func startOf(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateLayout+" "+model.ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start %s %s: %w", date, clock, err)
	}
	return t, nil
}

// occurrence returns the k-th repetition of a series starting at base.
// Monthly series keep the day of base, clamped to the length of the month.
func occurrence(base time.Time, pattern model.Recurrence, k int) time.Time {
	switch pattern {
	case model.RecurDaily:
		return base.AddDate(0, 0, k)
	case model.RecurWeekly:
		return base.AddDate(0, 0, 7*k)
	case model.RecurMonthly:
		year, month, day := base.Date()
		first := time.Date(year, month+time.Month(k), 1, 0, 0, 0, 0, base.Location())
		if last := daysInMonth(first.Month(), first.Year()); day > last {
			day = last
		}
		return time.Date(first.Year(), first.Month(), day, base.Hour(), base.Minute(), 0, 0, base.Location())
	default:
		return base
	}
}

// NextOccurrence returns the first occurrence strictly after now. A one-off
// item, or one with an unknown pattern, only occurs at base.
func NextOccurrence(base time.Time, recurring bool, pattern model.Recurrence, now time.Time) (time.Time, bool) {
	if base.After(now) {
		return base, true
	}
	if !recurring || !pattern.Valid() {
		return time.Time{}, false
	}

	// start just below the answer and walk forward
	var k int
	switch pattern {
	case model.RecurDaily:
		k = int(now.Sub(base).Hours()/24) - 1
	case model.RecurWeekly:
		k = int(now.Sub(base).Hours()/(24*7)) - 1
	case model.RecurMonthly:
		k = (now.Year()-base.Year())*12 + int(now.Month()-base.Month()) - 1
	}
	if k < 0 {
		k = 0
	}

	for {
		if next := occurrence(base, pattern, k); next.After(now) {
			return next, true
		}
		k++
	}
}

// occursOn reports whether the series has an occurrence on the calendar day of day.
func occursOn(base time.Time, recurring bool, pattern model.Recurrence, day time.Time) bool {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, base.Location())
	next, ok := NextOccurrence(base, recurring, pattern, midnight.Add(-time.Nanosecond))
	if !ok {
		return false
	}
	ny, nm, nd := next.Date()
	return ny == y && nm == m && nd == d
}

func recurrenceOf(pattern *string) model.Recurrence {
	if pattern == nil {
		return ""
	}
	return model.Recurrence(*pattern)
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)
	lastOfMonth := firstOfNextMonth.AddDate(0, 0, -1)
	return lastOfMonth.Day()
}
