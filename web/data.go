package web

import (
	"time"

	"paylog/billing"
	"paylog/worklog"
)

type freelancerResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	HourlyRate float64   `json:"hourly_rate"`
	CreatedAt  time.Time `json:"created_at"`
}

type freelancerListResponse struct {
	Data  []freelancerResponse `json:"data"`
	Count int                  `json:"count"`
}

type worklogListItem struct {
	ID              int64     `json:"id"`
	TaskName        string    `json:"task_name"`
	Description     string    `json:"description"`
	FreelancerID    int64     `json:"freelancer_id"`
	FreelancerName  string    `json:"freelancer_name"`
	FreelancerEmail string    `json:"freelancer_email"`
	HourlyRate      float64   `json:"hourly_rate"`
	TotalHours      float64   `json:"total_hours"`
	EarnedAmount    float64   `json:"earned_amount"`
	Status          string    `json:"status"`
	PaymentID       *int64    `json:"payment_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type worklogListResponse struct {
	Data  []worklogListItem `json:"data"`
	Count int               `json:"count"`
}

type timeEntryResponse struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Hours     float64   `json:"hours"`
	CreatedAt time.Time `json:"created_at"`
}

type worklogDetailResponse struct {
	worklogListItem
	TimeEntries []timeEntryResponse `json:"time_entries"`
}

type paymentWorklogItem struct {
	ID             int64   `json:"id"`
	TaskName       string  `json:"task_name"`
	FreelancerID   int64   `json:"freelancer_id"`
	FreelancerName string  `json:"freelancer_name"`
	TotalHours     float64 `json:"total_hours"`
	EarnedAmount   float64 `json:"earned_amount"`
}

type paymentResponse struct {
	ID             int64                `json:"id"`
	Reference      string               `json:"reference"`
	Status         string               `json:"status"`
	TotalAmount    float64              `json:"total_amount"`
	DateRangeStart string               `json:"date_range_start"`
	DateRangeEnd   string               `json:"date_range_end"`
	CreatedAt      time.Time            `json:"created_at"`
	Worklogs       []paymentWorklogItem `json:"worklogs"`
}

type paymentListItem struct {
	ID             int64     `json:"id"`
	Reference      string    `json:"reference"`
	Status         string    `json:"status"`
	TotalAmount    float64   `json:"total_amount"`
	DateRangeStart string    `json:"date_range_start"`
	DateRangeEnd   string    `json:"date_range_end"`
	CreatedAt      time.Time `json:"created_at"`
	WorklogCount   int       `json:"worklog_count"`
}

type paymentListResponse struct {
	Data  []paymentListItem `json:"data"`
	Count int               `json:"count"`
}

func toFreelancerResponse(freelancer worklog.Freelancer) freelancerResponse {
	return freelancerResponse{
		ID:         freelancer.ID,
		Name:       freelancer.Name,
		Email:      freelancer.Email,
		HourlyRate: freelancer.HourlyRate,
		CreatedAt:  freelancer.CreatedAt,
	}
}

func toWorklogListItem(row billing.WorklogRow) worklogListItem {
	return worklogListItem{
		ID:              row.ID,
		TaskName:        row.TaskName,
		Description:     row.Description,
		FreelancerID:    row.FreelancerID,
		FreelancerName:  row.FreelancerName,
		FreelancerEmail: row.FreelancerEmail,
		HourlyRate:      row.HourlyRate,
		TotalHours:      row.TotalHours,
		EarnedAmount:    row.EarnedAmount,
		Status:          row.Status,
		PaymentID:       row.PaymentID,
		CreatedAt:       row.CreatedAt,
	}
}

func toWorklogDetailResponse(row billing.WorklogRow, entries []worklog.TimeEntry) worklogDetailResponse {
	timeEntries := make([]timeEntryResponse, 0, len(entries))
	for _, entry := range entries {
		timeEntries = append(timeEntries, timeEntryResponse{
			ID:        entry.ID,
			StartTime: entry.StartTime,
			EndTime:   entry.EndTime,
			Hours:     entry.Hours,
			CreatedAt: entry.CreatedAt,
		})
	}
	return worklogDetailResponse{
		worklogListItem: toWorklogListItem(row),
		TimeEntries:     timeEntries,
	}
}

func toPaymentResponse(detail *billing.PaymentDetail) paymentResponse {
	members := make([]paymentWorklogItem, 0, len(detail.Worklogs))
	for _, member := range detail.Worklogs {
		members = append(members, paymentWorklogItem{
			ID:             member.WorklogID,
			TaskName:       member.TaskName,
			FreelancerID:   member.FreelancerID,
			FreelancerName: member.FreelancerName,
			TotalHours:     member.TotalHours,
			EarnedAmount:   member.EarnedAmount,
		})
	}
	return paymentResponse{
		ID:             detail.Payment.ID,
		Reference:      detail.Payment.Reference,
		Status:         detail.Payment.Status,
		TotalAmount:    detail.Payment.TotalAmount,
		DateRangeStart: detail.Payment.DateRangeStart.Format("2006-01-02"),
		DateRangeEnd:   detail.Payment.DateRangeEnd.Format("2006-01-02"),
		CreatedAt:      detail.Payment.CreatedAt,
		Worklogs:       members,
	}
}

func toPaymentListItem(row billing.PaymentRow) paymentListItem {
	return paymentListItem{
		ID:             row.Payment.ID,
		Reference:      row.Payment.Reference,
		Status:         row.Payment.Status,
		TotalAmount:    row.Payment.TotalAmount,
		DateRangeStart: row.Payment.DateRangeStart.Format("2006-01-02"),
		DateRangeEnd:   row.Payment.DateRangeEnd.Format("2006-01-02"),
		CreatedAt:      row.Payment.CreatedAt,
		WorklogCount:   row.WorklogCount,
	}
}
