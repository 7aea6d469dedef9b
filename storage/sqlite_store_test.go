package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"paylog/worklog"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "paylog_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func insertTestFreelancer(t *testing.T, store *SQLiteStore, name string, rate float64) int64 {
	t.Helper()

	id, err := store.InsertFreelancer(worklog.Freelancer{
		Name:       name,
		Email:      name + "@example.com",
		HourlyRate: rate,
	})
	if err != nil {
		t.Fatalf("insert freelancer: %v", err)
	}
	return id
}

func TestSQLiteStore_FreelancerRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local)
	id, err := store.InsertFreelancer(worklog.Freelancer{
		Name:       "Ada",
		Email:      "ada@example.com",
		HourlyRate: 85.5,
		CreatedAt:  created,
	})
	if err != nil {
		t.Fatalf("insert freelancer: %v", err)
	}

	freelancer, found, err := store.GetFreelancerByID(id)
	if err != nil {
		t.Fatalf("get freelancer: %v", err)
	}
	if !found {
		t.Fatal("expected freelancer to exist")
	}
	if freelancer.Name != "Ada" || freelancer.Email != "ada@example.com" {
		t.Fatalf("unexpected freelancer fields: %+v", freelancer)
	}
	if freelancer.HourlyRate != 85.5 {
		t.Fatalf("expected hourly rate 85.5, got %v", freelancer.HourlyRate)
	}
	if !freelancer.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %v, got %v", created, freelancer.CreatedAt)
	}

	listed, err := store.ListFreelancers()
	if err != nil {
		t.Fatalf("list freelancers: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 freelancer, got %d", len(listed))
	}
}

func TestSQLiteStore_GetFreelancerByID_Missing(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	_, found, err := store.GetFreelancerByID(42)
	if err != nil {
		t.Fatalf("get freelancer: %v", err)
	}
	if found {
		t.Fatal("expected freelancer to be missing")
	}
}

func TestSQLiteStore_WorklogDefaultsToPending(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	freelancerID := insertTestFreelancer(t, store, "ada", 50)

	id, err := store.InsertWorklog(worklog.Worklog{
		FreelancerID: freelancerID,
		TaskName:     "API integration",
	})
	if err != nil {
		t.Fatalf("insert worklog: %v", err)
	}

	entry, found, err := store.GetWorklogByID(id)
	if err != nil {
		t.Fatalf("get worklog: %v", err)
	}
	if !found {
		t.Fatal("expected worklog to exist")
	}
	if entry.Status != worklog.StatusPending {
		t.Fatalf("expected status pending, got %q", entry.Status)
	}
	if entry.PaymentID != nil {
		t.Fatalf("expected nil payment id, got %v", *entry.PaymentID)
	}
}

func TestSQLiteStore_TimeEntriesOrderedByStart(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	freelancerID := insertTestFreelancer(t, store, "ada", 50)
	worklogID, err := store.InsertWorklog(worklog.Worklog{
		FreelancerID: freelancerID,
		TaskName:     "review",
	})
	if err != nil {
		t.Fatalf("insert worklog: %v", err)
	}

	day := time.Date(2026, 2, 3, 0, 0, 0, 0, time.Local)
	spans := []struct{ start, end time.Duration }{
		{13 * time.Hour, 15 * time.Hour},
		{9 * time.Hour, 11 * time.Hour},
	}
	for _, span := range spans {
		start := day.Add(span.start)
		end := day.Add(span.end)
		if _, err := store.InsertTimeEntry(worklog.TimeEntry{
			WorklogID: worklogID,
			StartTime: start,
			EndTime:   end,
			Hours:     worklog.SpanHours(start, end),
		}); err != nil {
			t.Fatalf("insert time entry: %v", err)
		}
	}

	entries, err := store.ListTimeEntries(worklogID)
	if err != nil {
		t.Fatalf("list time entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 time entries, got %d", len(entries))
	}
	if !entries[0].StartTime.Before(entries[1].StartTime) {
		t.Fatalf("expected entries ordered by start time: %v then %v", entries[0].StartTime, entries[1].StartTime)
	}
	if got := worklog.TotalHours(entries); got != 4 {
		t.Fatalf("expected 4 total hours, got %v", got)
	}
}

func TestSQLiteStore_AssignAndDetachWorklogs(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	freelancerID := insertTestFreelancer(t, store, "ada", 50)

	worklogIDs := make([]int64, 0, 2)
	for _, task := range []string{"task-a", "task-b"} {
		id, err := store.InsertWorklog(worklog.Worklog{FreelancerID: freelancerID, TaskName: task})
		if err != nil {
			t.Fatalf("insert worklog: %v", err)
		}
		worklogIDs = append(worklogIDs, id)
	}

	paymentID, err := store.InsertPayment(worklog.Payment{
		Reference:      "ref-assign",
		TotalAmount:    100,
		DateRangeStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local),
		DateRangeEnd:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("insert payment: %v", err)
	}

	if err := store.AssignWorklogsToPayment(paymentID, worklogIDs); err != nil {
		t.Fatalf("assign worklogs: %v", err)
	}

	members, err := store.ListWorklogsByPayment(paymentID)
	if err != nil {
		t.Fatalf("list payment worklogs: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 member worklogs, got %d", len(members))
	}

	if err := store.DetachWorklogFromPayment(worklogIDs[0]); err != nil {
		t.Fatalf("detach worklog: %v", err)
	}

	members, err = store.ListWorklogsByPayment(paymentID)
	if err != nil {
		t.Fatalf("list payment worklogs after detach: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member worklog after detach, got %d", len(members))
	}
	if members[0].TaskName != "task-b" {
		t.Fatalf("expected task-b to remain, got %q", members[0].TaskName)
	}
}

func TestSQLiteStore_AssignUnknownWorklogRollsBack(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	freelancerID := insertTestFreelancer(t, store, "ada", 50)
	worklogID, err := store.InsertWorklog(worklog.Worklog{FreelancerID: freelancerID, TaskName: "only"})
	if err != nil {
		t.Fatalf("insert worklog: %v", err)
	}

	paymentID, err := store.InsertPayment(worklog.Payment{
		Reference:      "ref-rollback",
		DateRangeStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local),
		DateRangeEnd:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("insert payment: %v", err)
	}

	err = store.AssignWorklogsToPayment(paymentID, []int64{worklogID, 9999})
	if !errors.Is(err, ErrWorklogNotFound) {
		t.Fatalf("expected ErrWorklogNotFound, got %v", err)
	}

	members, err := store.ListWorklogsByPayment(paymentID)
	if err != nil {
		t.Fatalf("list payment worklogs: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("expected rollback to leave no member worklogs, got %d", len(members))
	}
}

func TestSQLiteStore_ConfirmPaymentMarksWorklogsPaid(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	freelancerID := insertTestFreelancer(t, store, "ada", 50)
	worklogID, err := store.InsertWorklog(worklog.Worklog{FreelancerID: freelancerID, TaskName: "task"})
	if err != nil {
		t.Fatalf("insert worklog: %v", err)
	}

	paymentID, err := store.InsertPayment(worklog.Payment{
		Reference:      "ref-confirm",
		TotalAmount:    250,
		DateRangeStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local),
		DateRangeEnd:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("insert payment: %v", err)
	}
	if err := store.AssignWorklogsToPayment(paymentID, []int64{worklogID}); err != nil {
		t.Fatalf("assign worklogs: %v", err)
	}

	if err := store.ConfirmPayment(paymentID); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	payment, found, err := store.GetPaymentByID(paymentID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if !found {
		t.Fatal("expected payment to exist")
	}
	if payment.Status != worklog.PaymentConfirmed {
		t.Fatalf("expected confirmed payment, got %q", payment.Status)
	}

	entry, _, err := store.GetWorklogByID(worklogID)
	if err != nil {
		t.Fatalf("get worklog: %v", err)
	}
	if entry.Status != worklog.StatusPaid {
		t.Fatalf("expected paid worklog, got %q", entry.Status)
	}
}

func TestSQLiteStore_ConfirmMissingPayment(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	if err := store.ConfirmPayment(77); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestSQLiteStore_UpdatePaymentTotal(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	paymentID, err := store.InsertPayment(worklog.Payment{
		Reference:      "ref-total",
		TotalAmount:    300,
		DateRangeStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local),
		DateRangeEnd:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("insert payment: %v", err)
	}

	if err := store.UpdatePaymentTotal(paymentID, 187.25); err != nil {
		t.Fatalf("update payment total: %v", err)
	}

	payment, _, err := store.GetPaymentByID(paymentID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.TotalAmount != 187.25 {
		t.Fatalf("expected total 187.25, got %v", payment.TotalAmount)
	}

	if err := store.UpdatePaymentTotal(9999, 1); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}
