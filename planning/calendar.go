package planning

import (
	"fmt"
	"time"
)

// =============================================================================
// ISO WEEK MATH - Cycles are anchored on ISO-8601 weeks (Monday start)
// =============================================================================

// ISOWeekNumber returns the ISO-8601 week number of t.
func ISOWeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// ISOWeekYear returns the ISO-8601 week-numbering year of t.
// Late December / early January dates can belong to a different ISO year
// than their calendar year.
func ISOWeekYear(t time.Time) int {
	year, _ := t.ISOWeek()
	return year
}

// Monday returns the Monday starting the ISO week containing t.
func Monday(t time.Time) time.Time {
	t = atMidnight(t)
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	return t.AddDate(0, 0, -offset)
}

// MondayOfISOWeek returns the Monday starting the given ISO week.
// January 4th is always inside ISO week 1.
func MondayOfISOWeek(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return Monday(jan4).AddDate(0, 0, (week-1)*7)
}

// IsMonday reports whether t falls on a Monday.
func IsMonday(t time.Time) bool {
	return t.Weekday() == time.Monday
}

func atMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// =============================================================================
// CYCLE DERIVATION
// =============================================================================

// CycleEnd returns the last day of a cycle starting on startMonday.
func CycleEnd(startMonday time.Time) time.Time {
	return startMonday.AddDate(0, 0, 27)
}

// CycleWeeks derives the 4 contiguous weeks of a cycle from its starting
// Monday: offsets 0/7/14/21 days, each week ending on the following Sunday.
func CycleWeeks(cycleID CycleID, startMonday time.Time) []Week {
	weeks := make([]Week, 0, 4)
	for offset := 0; offset < 4; offset++ {
		start := startMonday.AddDate(0, 0, offset*7)
		weeks = append(weeks, Week{
			CycleID:   cycleID,
			ISOWeek:   ISOWeekNumber(start),
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 6),
		})
	}
	return weeks
}

// DayDate returns the calendar date of a day-of-week within a week starting
// on weekStart (day 1 = weekStart itself).
func DayDate(weekStart time.Time, day int) time.Time {
	return atMidnight(weekStart).AddDate(0, 0, day-1)
}

// SlotAt combines a week start, a day-of-week and an "HH:MM" time into an
// absolute timestamp. Returns an error on a malformed time string.
func SlotAt(weekStart time.Time, day int, hhmm string) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	date := DayDate(weekStart, day)
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

// =============================================================================
// SLOT GRID
// =============================================================================

// Slot is one half-hour interval of the planning grid.
type Slot struct {
	Start string
	End   string
}

// HalfHourSlots generates the half-hour grid between two "HH:MM" bounds.
// Defaults (empty bounds) cover the business day 08:00-19:30.
func HalfHourSlots(start, end string) []Slot {
	if start == "" {
		start = "08:00"
	}
	if end == "" {
		end = "19:30"
	}
	current, err := minutesOf(start)
	if err != nil {
		return nil
	}
	max, err := minutesOf(end)
	if err != nil {
		return nil
	}

	var slots []Slot
	for current < max {
		next := current + 30
		slots = append(slots, Slot{Start: hhmm(current), End: hhmm(next)})
		current = next
	}
	return slots
}

func minutesOf(t string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(t, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", t, err)
	}
	return h*60 + m, nil
}

func hhmm(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
