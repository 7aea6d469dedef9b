package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"paylog/worklog"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var (
	ErrFreelancerNotFound = errors.New("freelancer not found")
	ErrWorklogNotFound    = errors.New("worklog not found")
	ErrPaymentNotFound    = errors.New("payment not found")
)

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS freelancers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	hourly_rate REAL NOT NULL CHECK(hourly_rate >= 0),
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_freelancers_email ON freelancers(email);

CREATE TABLE IF NOT EXISTS payments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	reference TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL,
	total_amount REAL NOT NULL,
	date_range_start TEXT NOT NULL,
	date_range_end TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_payments_status ON payments(status);

CREATE TABLE IF NOT EXISTS worklogs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	freelancer_id INTEGER NOT NULL REFERENCES freelancers(id),
	task_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	payment_id INTEGER REFERENCES payments(id),
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_worklogs_freelancer_id ON worklogs(freelancer_id);
CREATE INDEX IF NOT EXISTS ix_worklogs_status ON worklogs(status);
CREATE INDEX IF NOT EXISTS ix_worklogs_payment_id ON worklogs(payment_id);

CREATE TABLE IF NOT EXISTS time_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	worklog_id INTEGER NOT NULL REFERENCES worklogs(id),
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	hours REAL NOT NULL CHECK(hours >= 0),
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_time_entries_worklog_id ON time_entries(worklog_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertFreelancer(freelancer worklog.Freelancer) (int64, error) {
	createdAt := freelancer.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.Exec(
		`INSERT INTO freelancers (name, email, hourly_rate, created_at) VALUES (?, ?, ?, ?);`,
		freelancer.Name,
		freelancer.Email,
		freelancer.HourlyRate,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert freelancer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted freelancer id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) ListFreelancers() ([]worklog.Freelancer, error) {
	rows, err := s.db.Query(`SELECT id, name, email, hourly_rate, created_at FROM freelancers ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("query freelancers: %w", err)
	}
	defer rows.Close()

	freelancers := make([]worklog.Freelancer, 0, 32)
	for rows.Next() {
		var (
			freelancer worklog.Freelancer
			createdRaw string
		)
		if err := rows.Scan(&freelancer.ID, &freelancer.Name, &freelancer.Email, &freelancer.HourlyRate, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan freelancer: %w", err)
		}
		freelancer.CreatedAt, err = time.Parse(time.RFC3339, createdRaw)
		if err != nil {
			return nil, fmt.Errorf("parse freelancer created_at %q: %w", createdRaw, err)
		}
		freelancers = append(freelancers, freelancer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate freelancers: %w", err)
	}
	return freelancers, nil
}

// GetFreelancerByID returns one freelancer by ID.
func (s *SQLiteStore) GetFreelancerByID(id int64) (worklog.Freelancer, bool, error) {
	if id <= 0 {
		return worklog.Freelancer{}, false, fmt.Errorf("freelancer id must be > 0")
	}

	var (
		freelancer worklog.Freelancer
		createdRaw string
	)
	err := s.db.QueryRow(
		`SELECT id, name, email, hourly_rate, created_at FROM freelancers WHERE id = ?;`, id,
	).Scan(&freelancer.ID, &freelancer.Name, &freelancer.Email, &freelancer.HourlyRate, &createdRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.Freelancer{}, false, nil
		}
		return worklog.Freelancer{}, false, fmt.Errorf("query freelancer %d: %w", id, err)
	}

	freelancer.CreatedAt, err = time.Parse(time.RFC3339, createdRaw)
	if err != nil {
		return worklog.Freelancer{}, false, fmt.Errorf("parse freelancer created_at %q: %w", createdRaw, err)
	}
	return freelancer, true, nil
}

func (s *SQLiteStore) InsertWorklog(entry worklog.Worklog) (int64, error) {
	if entry.FreelancerID <= 0 {
		return 0, fmt.Errorf("worklog freelancer id must be > 0")
	}

	status := entry.Status
	if status == "" {
		status = worklog.StatusPending
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.Exec(
		`INSERT INTO worklogs (freelancer_id, task_name, description, status, payment_id, created_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		entry.FreelancerID,
		entry.TaskName,
		entry.Description,
		status,
		nullableID(entry.PaymentID),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert worklog: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted worklog id: %w", err)
	}
	return id, nil
}

const worklogColumns = `id, freelancer_id, task_name, description, status, payment_id, created_at`

func (s *SQLiteStore) ListWorklogs() ([]worklog.Worklog, error) {
	rows, err := s.db.Query(`SELECT ` + worklogColumns + ` FROM worklogs ORDER BY created_at, id;`)
	if err != nil {
		return nil, fmt.Errorf("query worklogs: %w", err)
	}
	defer rows.Close()

	return scanWorklogs(rows)
}

// ListWorklogsByPayment returns the worklogs currently linked to a payment.
func (s *SQLiteStore) ListWorklogsByPayment(paymentID int64) ([]worklog.Worklog, error) {
	if paymentID <= 0 {
		return nil, fmt.Errorf("payment id must be > 0")
	}

	rows, err := s.db.Query(
		`SELECT `+worklogColumns+` FROM worklogs WHERE payment_id = ? ORDER BY created_at, id;`,
		paymentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query worklogs for payment %d: %w", paymentID, err)
	}
	defer rows.Close()

	return scanWorklogs(rows)
}

// GetWorklogByID returns one worklog by ID.
func (s *SQLiteStore) GetWorklogByID(id int64) (worklog.Worklog, bool, error) {
	if id <= 0 {
		return worklog.Worklog{}, false, fmt.Errorf("worklog id must be > 0")
	}

	row := s.db.QueryRow(`SELECT `+worklogColumns+` FROM worklogs WHERE id = ?;`, id)
	entry, err := scanWorklog(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.Worklog{}, false, nil
		}
		return worklog.Worklog{}, false, fmt.Errorf("query worklog %d: %w", id, err)
	}
	return entry, true, nil
}

// AssignWorklogsToPayment links the given worklogs to a payment in one
// transaction. Every ID must refer to an existing worklog.
func (s *SQLiteStore) AssignWorklogsToPayment(paymentID int64, worklogIDs []int64) error {
	if paymentID <= 0 {
		return fmt.Errorf("payment id must be > 0")
	}
	if len(worklogIDs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`UPDATE worklogs SET payment_id = ? WHERE id = ?;`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare assign statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range worklogIDs {
		res, err := stmt.Exec(paymentID, id)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("assign worklog %d to payment %d: %w", id, paymentID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("read assigned row count: %w", err)
		}
		if rows == 0 {
			_ = tx.Rollback()
			return ErrWorklogNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assign transaction: %w", err)
	}
	return nil
}

// DetachWorklogFromPayment clears the payment link on one worklog.
func (s *SQLiteStore) DetachWorklogFromPayment(worklogID int64) error {
	if worklogID <= 0 {
		return fmt.Errorf("worklog id must be > 0")
	}

	res, err := s.db.Exec(`UPDATE worklogs SET payment_id = NULL WHERE id = ?;`, worklogID)
	if err != nil {
		return fmt.Errorf("detach worklog %d: %w", worklogID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read detached row count: %w", err)
	}
	if rows == 0 {
		return ErrWorklogNotFound
	}
	return nil
}

func (s *SQLiteStore) InsertTimeEntry(entry worklog.TimeEntry) (int64, error) {
	if entry.WorklogID <= 0 {
		return 0, fmt.Errorf("time entry worklog id must be > 0")
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.Exec(
		`INSERT INTO time_entries (worklog_id, start_time, end_time, hours, created_at)
VALUES (?, ?, ?, ?, ?);`,
		entry.WorklogID,
		entry.StartTime.Format(time.RFC3339),
		entry.EndTime.Format(time.RFC3339),
		entry.Hours,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert time entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted time entry id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) ListTimeEntries(worklogID int64) ([]worklog.TimeEntry, error) {
	if worklogID <= 0 {
		return nil, fmt.Errorf("worklog id must be > 0")
	}

	rows, err := s.db.Query(
		`SELECT id, worklog_id, start_time, end_time, hours, created_at
FROM time_entries WHERE worklog_id = ? ORDER BY start_time, id;`,
		worklogID,
	)
	if err != nil {
		return nil, fmt.Errorf("query time entries for worklog %d: %w", worklogID, err)
	}
	defer rows.Close()

	entries := make([]worklog.TimeEntry, 0, 16)
	for rows.Next() {
		var (
			entry      worklog.TimeEntry
			startRaw   string
			endRaw     string
			createdRaw string
		)
		if err := rows.Scan(&entry.ID, &entry.WorklogID, &startRaw, &endRaw, &entry.Hours, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}

		entry.StartTime, err = time.Parse(time.RFC3339, startRaw)
		if err != nil {
			return nil, fmt.Errorf("parse time entry start %q: %w", startRaw, err)
		}
		entry.EndTime, err = time.Parse(time.RFC3339, endRaw)
		if err != nil {
			return nil, fmt.Errorf("parse time entry end %q: %w", endRaw, err)
		}
		entry.CreatedAt, err = time.Parse(time.RFC3339, createdRaw)
		if err != nil {
			return nil, fmt.Errorf("parse time entry created_at %q: %w", createdRaw, err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) InsertPayment(payment worklog.Payment) (int64, error) {
	status := payment.Status
	if status == "" {
		status = worklog.PaymentDraft
	}
	createdAt := payment.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.Exec(
		`INSERT INTO payments (reference, status, total_amount, date_range_start, date_range_end, created_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		payment.Reference,
		status,
		payment.TotalAmount,
		payment.DateRangeStart.Format(time.RFC3339),
		payment.DateRangeEnd.Format(time.RFC3339),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted payment id: %w", err)
	}
	return id, nil
}

const paymentColumns = `id, reference, status, total_amount, date_range_start, date_range_end, created_at`

func (s *SQLiteStore) ListPayments() ([]worklog.Payment, error) {
	rows, err := s.db.Query(`SELECT ` + paymentColumns + ` FROM payments ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]worklog.Payment, 0, 16)
	for rows.Next() {
		payment, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

// GetPaymentByID returns one payment by ID.
func (s *SQLiteStore) GetPaymentByID(id int64) (worklog.Payment, bool, error) {
	if id <= 0 {
		return worklog.Payment{}, false, fmt.Errorf("payment id must be > 0")
	}

	row := s.db.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE id = ?;`, id)
	payment, err := scanPayment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.Payment{}, false, nil
		}
		return worklog.Payment{}, false, fmt.Errorf("query payment %d: %w", id, err)
	}
	return payment, true, nil
}

// UpdatePaymentTotal persists a recomputed total for a draft payment.
func (s *SQLiteStore) UpdatePaymentTotal(id int64, total float64) error {
	if id <= 0 {
		return fmt.Errorf("payment id must be > 0")
	}

	res, err := s.db.Exec(`UPDATE payments SET total_amount = ? WHERE id = ?;`, total, id)
	if err != nil {
		return fmt.Errorf("update payment %d total: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated row count: %w", err)
	}
	if rows == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ConfirmPayment marks a payment confirmed and all of its worklogs paid in a
// single transaction.
func (s *SQLiteStore) ConfirmPayment(id int64) error {
	if id <= 0 {
		return fmt.Errorf("payment id must be > 0")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	res, err := tx.Exec(`UPDATE payments SET status = ? WHERE id = ?;`, worklog.PaymentConfirmed, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("confirm payment %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("read confirmed row count: %w", err)
	}
	if rows == 0 {
		_ = tx.Rollback()
		return ErrPaymentNotFound
	}

	if _, err := tx.Exec(
		`UPDATE worklogs SET status = ? WHERE payment_id = ?;`,
		worklog.StatusPaid,
		id,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mark payment %d worklogs paid: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit confirm transaction: %w", err)
	}
	return nil
}

func scanWorklogs(rows *sql.Rows) ([]worklog.Worklog, error) {
	entries := make([]worklog.Worklog, 0, 64)
	for rows.Next() {
		entry, err := scanWorklog(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan worklog: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate worklogs: %w", err)
	}
	return entries, nil
}

func scanWorklog(scan func(dest ...any) error) (worklog.Worklog, error) {
	var (
		entry      worklog.Worklog
		paymentID  sql.NullInt64
		createdRaw string
	)
	if err := scan(
		&entry.ID,
		&entry.FreelancerID,
		&entry.TaskName,
		&entry.Description,
		&entry.Status,
		&paymentID,
		&createdRaw,
	); err != nil {
		return worklog.Worklog{}, err
	}

	if paymentID.Valid {
		value := paymentID.Int64
		entry.PaymentID = &value
	}

	createdAt, err := time.Parse(time.RFC3339, createdRaw)
	if err != nil {
		return worklog.Worklog{}, fmt.Errorf("parse worklog created_at %q: %w", createdRaw, err)
	}
	entry.CreatedAt = createdAt
	return entry, nil
}

func scanPayment(scan func(dest ...any) error) (worklog.Payment, error) {
	var (
		payment  worklog.Payment
		startRaw string
		endRaw   string
		created  string
	)
	if err := scan(
		&payment.ID,
		&payment.Reference,
		&payment.Status,
		&payment.TotalAmount,
		&startRaw,
		&endRaw,
		&created,
	); err != nil {
		return worklog.Payment{}, err
	}

	var err error
	payment.DateRangeStart, err = time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return worklog.Payment{}, fmt.Errorf("parse payment range start %q: %w", startRaw, err)
	}
	payment.DateRangeEnd, err = time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return worklog.Payment{}, fmt.Errorf("parse payment range end %q: %w", endRaw, err)
	}
	payment.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return worklog.Payment{}, fmt.Errorf("parse payment created_at %q: %w", created, err)
	}
	return payment, nil
}

func nullableID(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}
