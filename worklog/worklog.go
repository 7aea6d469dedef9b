package worklog

import (
	"math"
	"time"
)

// Worklog status values.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Payment status values.
const (
	PaymentDraft     = "draft"
	PaymentConfirmed = "confirmed"
)

// Freelancer is a person whose tracked hours are billed at an hourly rate.
type Freelancer struct {
	ID         int64
	Name       string
	Email      string
	HourlyRate float64
	CreatedAt  time.Time
}

// Worklog is a unit of billable work for one freelancer. It aggregates time
// entries and moves from pending to paid when its payment batch is confirmed.
type Worklog struct {
	ID           int64
	FreelancerID int64
	TaskName     string
	Description  string
	Status       string
	PaymentID    *int64
	CreatedAt    time.Time
}

// TimeEntry is a single tracked span belonging to a worklog.
type TimeEntry struct {
	ID        int64
	WorklogID int64
	StartTime time.Time
	EndTime   time.Time
	Hours     float64
	CreatedAt time.Time
}

// Payment is a batch of worklogs selected by date range and paid out together.
type Payment struct {
	ID             int64
	Reference      string
	Status         string
	TotalAmount    float64
	DateRangeStart time.Time
	DateRangeEnd   time.Time
	CreatedAt      time.Time
}

// TotalHours sums the tracked hours of the given entries.
func TotalHours(entries []TimeEntry) float64 {
	total := 0.0
	for _, entry := range entries {
		total += entry.Hours
	}
	return total
}

// EarnedAmount is hours times rate. Earned amounts and payment totals are
// computed in application code, never in SQL.
func EarnedAmount(hours, hourlyRate float64) float64 {
	return hours * hourlyRate
}

// RoundAmount rounds a currency amount to two decimals.
func RoundAmount(value float64) float64 {
	return math.Round(value*100) / 100
}

// SpanHours returns the fractional hours between start and end, or 0 when the
// span is not positive.
func SpanHours(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Hours()
}
