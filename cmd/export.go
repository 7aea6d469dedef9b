package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"paylog/billing"
	"paylog/output"
	"paylog/storage"

	"github.com/spf13/cobra"
)

var (
	exportMode   string
	exportFormat string
	exportOutput string
	exportDBPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export worklogs or payment batches to CSV or Excel",
	Long: `Export a report from the local database.

Mode "worklogs" writes one row per worklog with freelancer, total hours and
earned amount. Mode "payments" writes one row per payment batch.`,
	Example: `
  # Export all worklogs to CSV
  paylog export --mode worklogs --output worklogs.csv

  # Export payment batches to Excel
  paylog export --mode payments --output payments.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOutput) == "" {
			return fmt.Errorf("an output path is required, use --output")
		}

		format, err := detectExportFormat(exportOutput, exportFormat)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		service := billing.NewService(store)

		switch exportMode {
		case "worklogs":
			rows, err := service.ListWorklogRows(billing.WorklogFilter{})
			if err != nil {
				return err
			}
			writer, err := output.WriterForFormat(format)
			if err != nil {
				return err
			}
			if err := writer.Write(exportOutput, rows); err != nil {
				return err
			}
			fmt.Printf("Wrote %d worklog(s) to %s\n", len(rows), exportOutput)
		case "payments":
			payments, err := service.ListPayments()
			if err != nil {
				return err
			}
			summaries := output.BuildPaymentSummaries(payments)
			if err := output.WritePaymentSummaries(exportOutput, format, summaries); err != nil {
				return err
			}
			fmt.Printf("Wrote %d payment(s) to %s\n", len(summaries), exportOutput)
		default:
			return fmt.Errorf("unsupported export mode %q, use worklogs or payments", exportMode)
		}
		return nil
	},
}

func detectExportFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "xlsx", "xlsm":
		return "excel", nil
	default:
		return "", fmt.Errorf("cannot infer format from %s, use --format", path)
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "worklogs", "Export mode: worklogs or payments")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: csv or excel (default: by extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "./paylog.db", "Path to local SQLite database")
}
