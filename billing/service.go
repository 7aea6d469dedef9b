// Package billing builds payment batches from pending worklogs and keeps
// payment totals consistent with their member worklogs.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"paylog/internal/timeutil"
	"paylog/storage"
	"paylog/worklog"
)

var (
	ErrInvalidDateRange    = errors.New("date_range_end must be after date_range_start")
	ErrNoEligibleWorklogs  = errors.New("no eligible worklogs found for the given date range")
	ErrPaymentConfirmed    = errors.New("payment already confirmed")
	ErrPaymentImmutable    = errors.New("cannot modify a confirmed payment")
	ErrWorklogNotInPayment = errors.New("worklog not found in this payment")
)

type Service struct {
	store *storage.SQLiteStore
}

func NewService(store *storage.SQLiteStore) *Service {
	return &Service{store: store}
}

// WorklogFilter narrows worklog listings. Date bounds are inclusive and
// compared against the worklog's creation date.
type WorklogFilter struct {
	DateFrom     *time.Time
	DateTo       *time.Time
	FreelancerID int64
	Status       string
}

// WorklogRow is a worklog joined with its freelancer and derived totals.
type WorklogRow struct {
	ID              int64
	TaskName        string
	Description     string
	FreelancerID    int64
	FreelancerName  string
	FreelancerEmail string
	HourlyRate      float64
	TotalHours      float64
	EarnedAmount    float64
	Status          string
	PaymentID       *int64
	CreatedAt       time.Time
}

// MemberSummary is the per-worklog breakdown carried on a payment.
type MemberSummary struct {
	WorklogID      int64
	TaskName       string
	FreelancerID   int64
	FreelancerName string
	TotalHours     float64
	EarnedAmount   float64
}

// PaymentDetail is a payment with its member worklog summaries.
type PaymentDetail struct {
	Payment  worklog.Payment
	Worklogs []MemberSummary
}

// PaymentRow is a payment joined with its member worklog count.
type PaymentRow struct {
	Payment      worklog.Payment
	WorklogCount int
}

// BatchRequest selects pending worklogs for a new payment batch.
type BatchRequest struct {
	DateRangeStart        time.Time
	DateRangeEnd          time.Time
	ExcludedWorklogIDs    []int64
	ExcludedFreelancerIDs []int64
}

// ListWorklogRows returns filtered worklogs enriched with freelancer data and
// earned amounts. Filtering and totals happen in application code.
func (s *Service) ListWorklogRows(filter WorklogFilter) ([]WorklogRow, error) {
	entries, err := s.store.ListWorklogs()
	if err != nil {
		return nil, err
	}

	rates, err := s.freelancerIndex()
	if err != nil {
		return nil, err
	}

	rows := make([]WorklogRow, 0, len(entries))
	for _, entry := range entries {
		if !matchesFilter(entry, filter) {
			continue
		}
		row, err := s.buildRow(entry, rates)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WorklogDetail returns one enriched worklog with its time entries. The
// second return value is false when the worklog does not exist.
func (s *Service) WorklogDetail(id int64) (WorklogRow, []worklog.TimeEntry, bool, error) {
	entry, found, err := s.store.GetWorklogByID(id)
	if err != nil {
		return WorklogRow{}, nil, false, err
	}
	if !found {
		return WorklogRow{}, nil, false, nil
	}

	rates, err := s.freelancerIndex()
	if err != nil {
		return WorklogRow{}, nil, false, err
	}
	row, err := s.buildRow(entry, rates)
	if err != nil {
		return WorklogRow{}, nil, false, err
	}

	entries, err := s.store.ListTimeEntries(id)
	if err != nil {
		return WorklogRow{}, nil, false, err
	}
	return row, entries, true, nil
}

// CreateBatch collects eligible pending worklogs in the requested range into
// a new draft payment and links them to it.
func (s *Service) CreateBatch(request BatchRequest) (*PaymentDetail, error) {
	if request.DateRangeEnd.Before(request.DateRangeStart) {
		return nil, ErrInvalidDateRange
	}

	entries, err := s.store.ListWorklogs()
	if err != nil {
		return nil, err
	}

	excludedWorklogs := idSet(request.ExcludedWorklogIDs)
	excludedFreelancers := idSet(request.ExcludedFreelancerIDs)

	eligible := make([]worklog.Worklog, 0, len(entries))
	for _, entry := range entries {
		if entry.Status != worklog.StatusPending {
			continue
		}
		if !timeutil.WithinDateRange(entry.CreatedAt, request.DateRangeStart, request.DateRangeEnd) {
			continue
		}
		if _, skip := excludedWorklogs[entry.ID]; skip {
			continue
		}
		if _, skip := excludedFreelancers[entry.FreelancerID]; skip {
			continue
		}
		eligible = append(eligible, entry)
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleWorklogs
	}

	rates, err := s.freelancerIndex()
	if err != nil {
		return nil, err
	}

	total := 0.0
	summaries := make([]MemberSummary, 0, len(eligible))
	memberIDs := make([]int64, 0, len(eligible))
	for _, entry := range eligible {
		summary, err := s.buildSummary(entry, rates)
		if err != nil {
			return nil, err
		}
		total += summary.EarnedAmount
		summaries = append(summaries, summary)
		memberIDs = append(memberIDs, entry.ID)
	}

	payment := worklog.Payment{
		Reference:      uuid.NewString(),
		Status:         worklog.PaymentDraft,
		TotalAmount:    worklog.RoundAmount(total),
		DateRangeStart: request.DateRangeStart,
		DateRangeEnd:   request.DateRangeEnd,
	}
	paymentID, err := s.store.InsertPayment(payment)
	if err != nil {
		return nil, err
	}
	if err := s.store.AssignWorklogsToPayment(paymentID, memberIDs); err != nil {
		return nil, fmt.Errorf("link worklogs to payment %d: %w", paymentID, err)
	}

	stored, found, err := s.store.GetPaymentByID(paymentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, storage.ErrPaymentNotFound
	}
	return &PaymentDetail{Payment: stored, Worklogs: summaries}, nil
}

// ListPayments returns all payments with their member worklog counts.
func (s *Service) ListPayments() ([]PaymentRow, error) {
	payments, err := s.store.ListPayments()
	if err != nil {
		return nil, err
	}

	rows := make([]PaymentRow, 0, len(payments))
	for _, payment := range payments {
		members, err := s.store.ListWorklogsByPayment(payment.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, PaymentRow{Payment: payment, WorklogCount: len(members)})
	}
	return rows, nil
}

// PaymentDetail returns one payment with its member worklog summaries.
func (s *Service) PaymentDetail(paymentID int64) (*PaymentDetail, error) {
	payment, found, err := s.store.GetPaymentByID(paymentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, storage.ErrPaymentNotFound
	}
	return s.assemblePaymentDetail(payment)
}

// Confirm marks a draft payment confirmed and its member worklogs paid.
func (s *Service) Confirm(paymentID int64) (*PaymentDetail, error) {
	payment, found, err := s.store.GetPaymentByID(paymentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, storage.ErrPaymentNotFound
	}
	if payment.Status == worklog.PaymentConfirmed {
		return nil, ErrPaymentConfirmed
	}

	if err := s.store.ConfirmPayment(paymentID); err != nil {
		return nil, err
	}

	payment, _, err = s.store.GetPaymentByID(paymentID)
	if err != nil {
		return nil, err
	}
	return s.assemblePaymentDetail(payment)
}

// ExcludeWorklog detaches one worklog from a draft payment and recomputes the
// stored total from the remaining members. Returns the new total.
func (s *Service) ExcludeWorklog(paymentID, worklogID int64) (float64, error) {
	payment, found, err := s.store.GetPaymentByID(paymentID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, storage.ErrPaymentNotFound
	}
	if payment.Status == worklog.PaymentConfirmed {
		return 0, ErrPaymentImmutable
	}

	entry, found, err := s.store.GetWorklogByID(worklogID)
	if err != nil {
		return 0, err
	}
	if !found || entry.PaymentID == nil || *entry.PaymentID != paymentID {
		return 0, ErrWorklogNotInPayment
	}

	if err := s.store.DetachWorklogFromPayment(worklogID); err != nil {
		return 0, err
	}

	remaining, err := s.store.ListWorklogsByPayment(paymentID)
	if err != nil {
		return 0, err
	}

	rates, err := s.freelancerIndex()
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, member := range remaining {
		summary, err := s.buildSummary(member, rates)
		if err != nil {
			return 0, err
		}
		total += summary.EarnedAmount
	}

	newTotal := worklog.RoundAmount(total)
	if err := s.store.UpdatePaymentTotal(paymentID, newTotal); err != nil {
		return 0, err
	}
	return newTotal, nil
}

func (s *Service) assemblePaymentDetail(payment worklog.Payment) (*PaymentDetail, error) {
	members, err := s.store.ListWorklogsByPayment(payment.ID)
	if err != nil {
		return nil, err
	}

	rates, err := s.freelancerIndex()
	if err != nil {
		return nil, err
	}

	summaries := make([]MemberSummary, 0, len(members))
	for _, member := range members {
		summary, err := s.buildSummary(member, rates)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return &PaymentDetail{Payment: payment, Worklogs: summaries}, nil
}

func (s *Service) buildRow(entry worklog.Worklog, rates map[int64]worklog.Freelancer) (WorklogRow, error) {
	entries, err := s.store.ListTimeEntries(entry.ID)
	if err != nil {
		return WorklogRow{}, err
	}

	freelancer := rates[entry.FreelancerID]
	hours := worklog.TotalHours(entries)
	return WorklogRow{
		ID:              entry.ID,
		TaskName:        entry.TaskName,
		Description:     entry.Description,
		FreelancerID:    entry.FreelancerID,
		FreelancerName:  freelancer.Name,
		FreelancerEmail: freelancer.Email,
		HourlyRate:      freelancer.HourlyRate,
		TotalHours:      hours,
		EarnedAmount:    worklog.EarnedAmount(hours, freelancer.HourlyRate),
		Status:          entry.Status,
		PaymentID:       entry.PaymentID,
		CreatedAt:       entry.CreatedAt,
	}, nil
}

func (s *Service) buildSummary(entry worklog.Worklog, rates map[int64]worklog.Freelancer) (MemberSummary, error) {
	entries, err := s.store.ListTimeEntries(entry.ID)
	if err != nil {
		return MemberSummary{}, err
	}

	freelancer := rates[entry.FreelancerID]
	hours := worklog.TotalHours(entries)
	return MemberSummary{
		WorklogID:      entry.ID,
		TaskName:       entry.TaskName,
		FreelancerID:   entry.FreelancerID,
		FreelancerName: freelancer.Name,
		TotalHours:     hours,
		EarnedAmount:   worklog.EarnedAmount(hours, freelancer.HourlyRate),
	}, nil
}

// freelancerIndex loads all freelancers keyed by ID. A worklog whose
// freelancer is missing contributes zero rate, matching the listing behavior
// for orphaned rows.
func (s *Service) freelancerIndex() (map[int64]worklog.Freelancer, error) {
	freelancers, err := s.store.ListFreelancers()
	if err != nil {
		return nil, err
	}

	index := make(map[int64]worklog.Freelancer, len(freelancers))
	for _, freelancer := range freelancers {
		index[freelancer.ID] = freelancer
	}
	return index, nil
}

func matchesFilter(entry worklog.Worklog, filter WorklogFilter) bool {
	if filter.DateFrom != nil && timeutil.StartOfDay(entry.CreatedAt).Before(timeutil.StartOfDay(*filter.DateFrom)) {
		return false
	}
	if filter.DateTo != nil && timeutil.StartOfDay(entry.CreatedAt).After(timeutil.StartOfDay(*filter.DateTo)) {
		return false
	}
	if filter.FreelancerID > 0 && entry.FreelancerID != filter.FreelancerID {
		return false
	}
	if filter.Status != "" && entry.Status != filter.Status {
		return false
	}
	return true
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
