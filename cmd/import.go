package cmd

import (
	"fmt"
	"strings"

	"paylog/importer"
	"paylog/storage"
	"paylog/worklog"

	"github.com/spf13/cobra"
)

var (
	importFiles      []string
	importFormat     string
	importFreelancer string
	importDBPath     string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import worklogs from CSV or Excel time sheets",
	Long: `Import time sheet rows into the local database as worklogs.

Rows sharing a task name become one worklog with a time entry per row. Every
imported worklog is attributed to the freelancer given by --freelancer, who
must already exist.`,
	Example: `
  # Import a CSV time sheet for a freelancer
  paylog import -i hours.csv --freelancer dev@example.com

  # Import multiple Excel files
  paylog import -i week1.xlsx -i week2.xlsx --freelancer dev@example.com --format excel
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(importFiles) == 0 {
			return fmt.Errorf("at least one input file is required, use -i")
		}
		if strings.TrimSpace(importFreelancer) == "" {
			return fmt.Errorf("a freelancer email is required, use --freelancer")
		}

		store, err := storage.OpenSQLite(importDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		freelancer, err := findFreelancerByEmail(store, importFreelancer)
		if err != nil {
			return err
		}

		result, err := importer.Run(importFiles, importFormat)
		if err != nil {
			return err
		}

		for _, parsed := range result.Worklogs {
			worklogID, err := store.InsertWorklog(worklog.Worklog{
				FreelancerID: freelancer.ID,
				TaskName:     parsed.TaskName,
				Description:  parsed.Description,
			})
			if err != nil {
				return fmt.Errorf("insert worklog %q: %w", parsed.TaskName, err)
			}
			for _, entry := range parsed.Entries {
				entry.WorklogID = worklogID
				if _, err := store.InsertTimeEntry(entry); err != nil {
					return fmt.Errorf("insert time entry for %q: %w", parsed.TaskName, err)
				}
			}
		}

		fmt.Printf("Processed %d file(s): %d rows read, %d mapped, %d skipped\n",
			result.FilesProcessed, result.RowsRead, result.RowsMapped, result.RowsSkipped)
		fmt.Printf("Created %d worklog(s) for %s\n", len(result.Worklogs), freelancer.Email)
		return nil
	},
}

func findFreelancerByEmail(store *storage.SQLiteStore, email string) (worklog.Freelancer, error) {
	freelancers, err := store.ListFreelancers()
	if err != nil {
		return worklog.Freelancer{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, freelancer := range freelancers {
		if strings.ToLower(freelancer.Email) == needle {
			return freelancer, nil
		}
	}
	return worklog.Freelancer{}, fmt.Errorf("no freelancer with email %s", email)
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importFiles, "input", "i", nil, "Input file, repeatable")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format: csv or excel (default: by extension)")
	importCmd.Flags().StringVar(&importFreelancer, "freelancer", "", "Email of the freelancer the worklogs belong to")
	importCmd.Flags().StringVar(&importDBPath, "db", "./paylog.db", "Path to local SQLite database")
}
