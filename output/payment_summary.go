package output

import (
	"fmt"
	"time"

	"paylog/billing"
)

// PaymentSummary is one payment batch flattened for reporting.
type PaymentSummary struct {
	ID             int64
	Reference      string
	Status         string
	TotalAmount    float64
	DateRangeStart string
	DateRangeEnd   string
	WorklogCount   int
	CreatedAt      time.Time
}

func BuildPaymentSummaries(rows []billing.PaymentRow) []PaymentSummary {
	summaries := make([]PaymentSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, PaymentSummary{
			ID:             row.Payment.ID,
			Reference:      row.Payment.Reference,
			Status:         row.Payment.Status,
			TotalAmount:    row.Payment.TotalAmount,
			DateRangeStart: row.Payment.DateRangeStart.Format("2006-01-02"),
			DateRangeEnd:   row.Payment.DateRangeEnd.Format("2006-01-02"),
			WorklogCount:   row.WorklogCount,
			CreatedAt:      row.Payment.CreatedAt,
		})
	}
	return summaries
}

func WritePaymentSummaries(path, format string, summaries []PaymentSummary) error {
	switch normalizeFormat(format) {
	case "csv":
		return writePaymentSummariesCSV(path, summaries)
	case "excel", "xlsx":
		return writePaymentSummariesExcel(path, summaries)
	default:
		return fmt.Errorf("unsupported output format for payment summaries: %s", format)
	}
}
