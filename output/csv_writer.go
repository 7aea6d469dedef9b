package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"paylog/billing"
)

type CSVWriter struct{}

var worklogReportHeaders = []string{"ID", "TaskName", "Freelancer", "Email", "HourlyRate", "TotalHours", "EarnedAmount", "Status", "PaymentID", "CreatedAt"}

func (w *CSVWriter) Write(path string, rows []billing.WorklogRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(worklogReportHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.TaskName,
			row.FreelancerName,
			row.FreelancerEmail,
			fmt.Sprintf("%.2f", row.HourlyRate),
			fmt.Sprintf("%.2f", row.TotalHours),
			fmt.Sprintf("%.2f", row.EarnedAmount),
			row.Status,
			formatPaymentID(row.PaymentID),
			row.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}

func formatPaymentID(value *int64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatInt(*value, 10)
}
