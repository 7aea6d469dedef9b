package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

func writePaymentSummariesExcel(path string, summaries []PaymentSummary) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)

	for col, header := range paymentSummaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, summary := range summaries {
		rowNumber := i + 2
		values := []string{
			strconv.FormatInt(summary.ID, 10),
			summary.Reference,
			summary.Status,
			fmt.Sprintf("%.2f", summary.TotalAmount),
			summary.DateRangeStart,
			summary.DateRangeEnd,
			strconv.Itoa(summary.WorklogCount),
			summary.CreatedAt.Format(time.RFC3339),
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
