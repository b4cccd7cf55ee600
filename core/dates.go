package core

import "time"

// Dates cross every service boundary as calendar days. Midnight is the single
// normalization point; comparing or keying on anything finer is a bug.

const DayFormat = "2006-01-02"

// Midnight returns t at 00:00:00 UTC on the same calendar day.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// IsSchoolDay reports whether t falls on a week day (Mon-Fri).
func IsSchoolDay(t time.Time) bool {
	switch t.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

func FormatDay(t time.Time) string {
	return t.UTC().Format(DayFormat)
}
