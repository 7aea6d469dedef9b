// Package importer reads freelancer time sheets from CSV or Excel files and
// turns them into worklogs with time entries. Rows sharing a task name are
// collected under one worklog.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"paylog/worklog"
)

// ParsedWorklog is one imported worklog with its time entries, not yet
// persisted.
type ParsedWorklog struct {
	TaskName    string
	Description string
	Entries     []worklog.TimeEntry
}

type Result struct {
	FilesProcessed int
	RowsRead       int
	RowsMapped     int
	RowsSkipped    int
	Worklogs       []ParsedWorklog
}

// Run reads every file and maps its rows. Expected columns: task, date
// (YYYY-MM-DD), start and end (HH:MM), with optional description and hours.
// Rows without a task or with unparsable times are skipped.
func Run(paths []string, format string) (*Result, error) {
	result := &Result{}
	byTask := make(map[string]*ParsedWorklog)
	taskOrder := make([]string, 0, 16)

	for _, path := range paths {
		sourceFormat, err := inferFormat(path, format)
		if err != nil {
			return nil, err
		}
		reader, err := ReaderForFormat(sourceFormat)
		if err != nil {
			return nil, err
		}

		records, err := reader.Read(path)
		if err != nil {
			return nil, err
		}

		result.FilesProcessed++
		result.RowsRead += len(records)
		for _, record := range records {
			entry, taskName, description, ok := mapRecord(record)
			if !ok {
				result.RowsSkipped++
				continue
			}
			result.RowsMapped++

			key := strings.ToLower(taskName)
			parsed, exists := byTask[key]
			if !exists {
				parsed = &ParsedWorklog{TaskName: taskName}
				byTask[key] = parsed
				taskOrder = append(taskOrder, key)
			}
			if parsed.Description == "" {
				parsed.Description = description
			}
			parsed.Entries = append(parsed.Entries, entry)
		}
	}

	result.Worklogs = make([]ParsedWorklog, 0, len(taskOrder))
	for _, key := range taskOrder {
		result.Worklogs = append(result.Worklogs, *byTask[key])
	}
	return result, nil
}

func mapRecord(record Record) (worklog.TimeEntry, string, string, bool) {
	taskName := record.Get("task", "task_name", "title")
	if taskName == "" {
		return worklog.TimeEntry{}, "", "", false
	}

	start, err := parseDateAndTime(record.Get("date", "day"), record.Get("start", "start_time", "from"))
	if err != nil {
		return worklog.TimeEntry{}, "", "", false
	}
	end, err := parseDateAndTime(record.Get("date", "day"), record.Get("end", "end_time", "to"))
	if err != nil {
		return worklog.TimeEntry{}, "", "", false
	}
	if !end.After(start) {
		return worklog.TimeEntry{}, "", "", false
	}

	hours, err := parseHours(record.Get("hours", "duration"))
	if err != nil {
		return worklog.TimeEntry{}, "", "", false
	}
	if hours == 0 {
		hours = worklog.SpanHours(start, end)
	}

	entry := worklog.TimeEntry{
		StartTime: start,
		EndTime:   end,
		Hours:     hours,
	}
	return entry, taskName, record.Get("description", "notes", "comment"), true
}

func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "xlsx", "xlsm", "xls":
		return "excel", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}
