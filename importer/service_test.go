package importer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "timesheet.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestRun_GroupsRowsByTask(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, `task,description,date,start,end,hours
Backend API,initial setup,2026-02-03,09:00,11:00,
Backend API,,2026-02-04,13:00,14:30,
Code review,,2026-02-05,10:00,11:00,
`)

	result, err := Run([]string{path}, "")
	if err != nil {
		t.Fatalf("run import: %v", err)
	}

	if result.FilesProcessed != 1 || result.RowsRead != 3 || result.RowsMapped != 3 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if len(result.Worklogs) != 2 {
		t.Fatalf("expected 2 worklogs, got %d", len(result.Worklogs))
	}

	backend := result.Worklogs[0]
	if backend.TaskName != "Backend API" || backend.Description != "initial setup" {
		t.Fatalf("unexpected first worklog: %+v", backend)
	}
	if len(backend.Entries) != 2 {
		t.Fatalf("expected 2 entries for backend task, got %d", len(backend.Entries))
	}
	if backend.Entries[0].Hours != 2 || backend.Entries[1].Hours != 1.5 {
		t.Fatalf("unexpected derived hours: %+v", backend.Entries)
	}
}

func TestRun_ExplicitHoursOverrideSpan(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, `task,date,start,end,hours
Meeting,2026-02-03,09:00,12:00,"2,5"
`)

	result, err := Run([]string{path}, "")
	if err != nil {
		t.Fatalf("run import: %v", err)
	}
	if len(result.Worklogs) != 1 || len(result.Worklogs[0].Entries) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := result.Worklogs[0].Entries[0].Hours; got != 2.5 {
		t.Fatalf("expected 2.5 hours, got %v", got)
	}
}

func TestRun_SkipsInvalidRows(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, `task,date,start,end
,2026-02-03,09:00,10:00
Reversed,2026-02-03,11:00,10:00
Bad date,03.02.2026,09:00,10:00
Valid,2026-02-03,09:00,10:00
`)

	result, err := Run([]string{path}, "")
	if err != nil {
		t.Fatalf("run import: %v", err)
	}
	if result.RowsRead != 4 || result.RowsMapped != 1 || result.RowsSkipped != 3 {
		t.Fatalf("unexpected counters: %+v", result)
	}
	if len(result.Worklogs) != 1 || result.Worklogs[0].TaskName != "Valid" {
		t.Fatalf("unexpected worklogs: %+v", result.Worklogs)
	}
}

func TestRun_RejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	if _, err := Run([]string{"timesheet.txt"}, ""); err == nil {
		t.Fatal("expected error for unknown extension")
	}
}
