package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"paylog/billing"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, rows []billing.WorklogRow) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)

	for col, header := range worklogReportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, row := range rows {
		rowNumber := i + 2
		values := []string{
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

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNumber)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}
