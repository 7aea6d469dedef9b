package timeutil

import (
	"strings"
	"time"
)

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ParseISODate parses a YYYY-MM-DD value in the local timezone.
func ParseISODate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(parsed), nil
}

// WithinDateRange reports whether the calendar day of value falls inside the
// inclusive [from, to] range. Only the date parts are compared.
func WithinDateRange(value, from, to time.Time) bool {
	day := StartOfDay(value)
	return !day.Before(StartOfDay(from)) && !day.After(StartOfDay(to))
}
