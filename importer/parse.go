package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func parseHours(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, nil
	}
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	hours, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", raw, err)
	}
	if hours < 0 {
		return 0, fmt.Errorf("hours must not be negative")
	}
	return hours, nil
}

func parseDateAndTime(dateValue, timeValue string) (time.Time, error) {
	dateValue = strings.TrimSpace(dateValue)
	timeValue = strings.TrimSpace(timeValue)
	if dateValue == "" || timeValue == "" {
		return time.Time{}, fmt.Errorf("date and time are required")
	}

	day, err := time.ParseInLocation("2006-01-02", dateValue, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q (expected YYYY-MM-DD): %w", dateValue, err)
	}

	clock, err := time.Parse("15:04", timeValue)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q (expected HH:MM): %w", timeValue, err)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}
