package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var paymentSummaryHeaders = []string{"ID", "Reference", "Status", "TotalAmount", "DateRangeStart", "DateRangeEnd", "WorklogCount", "CreatedAt"}

func writePaymentSummariesCSV(path string, summaries []PaymentSummary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(paymentSummaryHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, summary := range summaries {
		row := []string{
			strconv.FormatInt(summary.ID, 10),
			summary.Reference,
			summary.Status,
			fmt.Sprintf("%.2f", summary.TotalAmount),
			summary.DateRangeStart,
			summary.DateRangeEnd,
			strconv.Itoa(summary.WorklogCount),
			summary.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
