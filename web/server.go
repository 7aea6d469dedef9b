// Package web serves the paylog JSON API. Errors are returned as
// {"detail": "..."} bodies with conventional status codes.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"paylog/billing"
	"paylog/internal/timeutil"
	"paylog/storage"
	"paylog/worklog"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	store    *storage.SQLiteStore
	service  *billing.Service
	validate *validator.Validate
	logger   *zap.Logger
	mux      *http.ServeMux
}

type freelancerCreateRequest struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	HourlyRate float64 `json:"hourly_rate" validate:"required,gt=0"`
}

type worklogCreateRequest struct {
	FreelancerID int64  `json:"freelancer_id" validate:"required,gt=0"`
	TaskName     string `json:"task_name" validate:"required"`
	Description  string `json:"description"`
}

type timeEntryCreateRequest struct {
	StartTime string   `json:"start_time" validate:"required"`
	EndTime   string   `json:"end_time" validate:"required"`
	Hours     *float64 `json:"hours" validate:"omitempty,gt=0"`
}

type paymentCreateRequest struct {
	DateRangeStart        string  `json:"date_range_start" validate:"required"`
	DateRangeEnd          string  `json:"date_range_end" validate:"required"`
	ExcludedWorklogIDs    []int64 `json:"excluded_worklog_ids"`
	ExcludedFreelancerIDs []int64 `json:"excluded_freelancer_ids"`
}

func NewServer(store *storage.SQLiteStore, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := &Server{
		store:    store,
		service:  billing.NewService(store),
		validate: validator.New(),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/freelancers/{$}", server.handleFreelancerList)
	mux.HandleFunc("POST /api/v1/freelancers/{$}", server.handleFreelancerCreate)
	mux.HandleFunc("GET /api/v1/worklogs/{$}", server.handleWorklogList)
	mux.HandleFunc("POST /api/v1/worklogs/{$}", server.handleWorklogCreate)
	mux.HandleFunc("GET /api/v1/worklogs/{id}", server.handleWorklogDetail)
	mux.HandleFunc("POST /api/v1/worklogs/{id}/entries", server.handleTimeEntryCreate)
	mux.HandleFunc("GET /api/v1/payments/{$}", server.handlePaymentList)
	mux.HandleFunc("POST /api/v1/payments/{$}", server.handlePaymentCreate)
	mux.HandleFunc("GET /api/v1/payments/{id}", server.handlePaymentDetail)
	mux.HandleFunc("POST /api/v1/payments/{id}/confirm", server.handlePaymentConfirm)
	mux.HandleFunc("DELETE /api/v1/payments/{id}/worklogs/{worklogID}", server.handlePaymentExcludeWorklog)
	mux.HandleFunc("GET /healthz", server.handleHealth)
	mux.HandleFunc("GET /docs", server.handleDocs)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(recorder, r)
	s.logger.Info("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", recorder.status),
		zap.Duration("duration", time.Since(started)),
	)
}

func (s *Server) handleFreelancerList(w http.ResponseWriter, r *http.Request) {
	freelancers, err := s.store.ListFreelancers()
	if err != nil {
		s.internalError(w, "list freelancers", err)
		return
	}

	data := make([]freelancerResponse, 0, len(freelancers))
	for _, freelancer := range freelancers {
		data = append(data, toFreelancerResponse(freelancer))
	}
	writeJSON(w, http.StatusOK, freelancerListResponse{Data: data, Count: len(data)})
}

func (s *Server) handleFreelancerCreate(w http.ResponseWriter, r *http.Request) {
	var body freelancerCreateRequest
	if !s.decodeAndValidate(w, r, &body) {
		return
	}

	id, err := s.store.InsertFreelancer(worklog.Freelancer{
		Name:       strings.TrimSpace(body.Name),
		Email:      strings.TrimSpace(body.Email),
		HourlyRate: body.HourlyRate,
	})
	if err != nil {
		s.internalError(w, "insert freelancer", err)
		return
	}

	freelancer, _, err := s.store.GetFreelancerByID(id)
	if err != nil {
		s.internalError(w, "get created freelancer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toFreelancerResponse(freelancer))
}

func (s *Server) handleWorklogList(w http.ResponseWriter, r *http.Request) {
	filter, err := worklogFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.service.ListWorklogRows(filter)
	if err != nil {
		s.internalError(w, "list worklogs", err)
		return
	}

	data := make([]worklogListItem, 0, len(rows))
	for _, row := range rows {
		data = append(data, toWorklogListItem(row))
	}
	writeJSON(w, http.StatusOK, worklogListResponse{Data: data, Count: len(data)})
}

func (s *Server) handleWorklogCreate(w http.ResponseWriter, r *http.Request) {
	var body worklogCreateRequest
	if !s.decodeAndValidate(w, r, &body) {
		return
	}

	_, found, err := s.store.GetFreelancerByID(body.FreelancerID)
	if err != nil {
		s.internalError(w, "get freelancer", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Freelancer not found")
		return
	}

	id, err := s.store.InsertWorklog(worklog.Worklog{
		FreelancerID: body.FreelancerID,
		TaskName:     strings.TrimSpace(body.TaskName),
		Description:  strings.TrimSpace(body.Description),
		Status:       worklog.StatusPending,
	})
	if err != nil {
		s.internalError(w, "insert worklog", err)
		return
	}

	row, entries, _, err := s.service.WorklogDetail(id)
	if err != nil {
		s.internalError(w, "get created worklog", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorklogDetailResponse(row, entries))
}

func (s *Server) handleWorklogDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid worklog id")
		return
	}

	row, entries, found, err := s.service.WorklogDetail(id)
	if err != nil {
		s.internalError(w, "get worklog detail", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Worklog not found")
		return
	}
	writeJSON(w, http.StatusOK, toWorklogDetailResponse(row, entries))
}

func (s *Server) handleTimeEntryCreate(w http.ResponseWriter, r *http.Request) {
	worklogID, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid worklog id")
		return
	}

	_, found, err := s.store.GetWorklogByID(worklogID)
	if err != nil {
		s.internalError(w, "get worklog", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Worklog not found")
		return
	}

	var body timeEntryCreateRequest
	if !s.decodeAndValidate(w, r, &body) {
		return
	}

	start, err := time.Parse(time.RFC3339, body.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_time (expected RFC 3339)")
		return
	}
	end, err := time.Parse(time.RFC3339, body.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_time (expected RFC 3339)")
		return
	}
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	hours := worklog.SpanHours(start, end)
	if body.Hours != nil {
		hours = *body.Hours
	}

	entryID, err := s.store.InsertTimeEntry(worklog.TimeEntry{
		WorklogID: worklogID,
		StartTime: start,
		EndTime:   end,
		Hours:     hours,
	})
	if err != nil {
		s.internalError(w, "insert time entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": entryID})
}

func (s *Server) handlePaymentList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.service.ListPayments()
	if err != nil {
		s.internalError(w, "list payments", err)
		return
	}

	data := make([]paymentListItem, 0, len(rows))
	for _, row := range rows {
		data = append(data, toPaymentListItem(row))
	}
	writeJSON(w, http.StatusOK, paymentListResponse{Data: data, Count: len(data)})
}

func (s *Server) handlePaymentCreate(w http.ResponseWriter, r *http.Request) {
	var body paymentCreateRequest
	if !s.decodeAndValidate(w, r, &body) {
		return
	}

	start, err := timeutil.ParseISODate(body.DateRangeStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date_range_start (expected YYYY-MM-DD)")
		return
	}
	end, err := timeutil.ParseISODate(body.DateRangeEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date_range_end (expected YYYY-MM-DD)")
		return
	}

	detail, err := s.service.CreateBatch(billing.BatchRequest{
		DateRangeStart:        start,
		DateRangeEnd:          end,
		ExcludedWorklogIDs:    body.ExcludedWorklogIDs,
		ExcludedFreelancerIDs: body.ExcludedFreelancerIDs,
	})
	if err != nil {
		s.writeBillingError(w, "create payment batch", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(detail))
}

func (s *Server) handlePaymentDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	detail, err := s.service.PaymentDetail(id)
	if err != nil {
		s.writeBillingError(w, "get payment detail", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(detail))
}

func (s *Server) handlePaymentConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	detail, err := s.service.Confirm(id)
	if err != nil {
		s.writeBillingError(w, "confirm payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(detail))
}

func (s *Server) handlePaymentExcludeWorklog(w http.ResponseWriter, r *http.Request) {
	paymentID, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}
	worklogID, err := parsePositiveInt64(r.PathValue("worklogID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid worklog id")
		return
	}

	newTotal, err := s.service.ExcludeWorklog(paymentID, worklogID)
	if err != nil {
		s.writeBillingError(w, "exclude worklog from payment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Worklog excluded from payment",
		"new_total": newTotal,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(templateFS, "templates/docs.html")
	if err != nil {
		s.internalError(w, "parse docs template", err)
		return
	}
	if err := tmpl.Execute(w, nil); err != nil {
		s.logger.Error("render docs template", zap.Error(err))
	}
}

// writeBillingError maps billing/storage sentinels to the API status codes.
func (s *Server) writeBillingError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, billing.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, "date_range_end must be after date_range_start")
	case errors.Is(err, billing.ErrNoEligibleWorklogs):
		writeError(w, http.StatusBadRequest, "No eligible worklogs found for the given date range")
	case errors.Is(err, billing.ErrPaymentConfirmed):
		writeError(w, http.StatusBadRequest, "Payment already confirmed")
	case errors.Is(err, billing.ErrPaymentImmutable):
		writeError(w, http.StatusBadRequest, "Cannot modify a confirmed payment")
	case errors.Is(err, storage.ErrPaymentNotFound):
		writeError(w, http.StatusNotFound, "Payment not found")
	case errors.Is(err, billing.ErrWorklogNotInPayment):
		writeError(w, http.StatusNotFound, "Worklog not found in this payment")
	case errors.Is(err, storage.ErrWorklogNotFound):
		writeError(w, http.StatusNotFound, "Worklog not found")
	default:
		s.internalError(w, action, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, action string, err error) {
	s.logger.Error(action, zap.Error(err))
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", action, err))
}

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := decodeJSON(r, out); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := s.validate.Struct(out); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func worklogFilterFromQuery(r *http.Request) (billing.WorklogFilter, error) {
	var filter billing.WorklogFilter
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("date_from")); raw != "" {
		parsed, err := timeutil.ParseISODate(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid date_from (expected YYYY-MM-DD)")
		}
		filter.DateFrom = &parsed
	}
	if raw := strings.TrimSpace(query.Get("date_to")); raw != "" {
		parsed, err := timeutil.ParseISODate(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid date_to (expected YYYY-MM-DD)")
		}
		filter.DateTo = &parsed
	}
	if raw := strings.TrimSpace(query.Get("freelancer_id")); raw != "" {
		parsed, err := parsePositiveInt64(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid freelancer_id")
		}
		filter.FreelancerID = parsed
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		if raw != worklog.StatusPending && raw != worklog.StatusPaid {
			return filter, fmt.Errorf("invalid status (expected pending or paid)")
		}
		filter.Status = raw
	}
	return filter, nil
}

func parsePositiveInt64(value string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("value must be > 0")
	}
	return parsed, nil
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
