// Package dto defines the gateway's HTTP request and response shapes
package dto

import "time"

// CreateJobRequest is the body for POST /api/v1/jobs
type CreateJobRequest struct {
	CompanyID    string    `json:"company_id"`
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Skills       []string  `json:"skills"`
	Location     string    `json:"location"`
	Deadline     time.Time `json:"deadline" binding:"required"`
}

// UpdateJobRequest is the body for PATCH /api/v1/jobs/:job_id
type UpdateJobRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Requirements []string   `json:"requirements"`
	Skills       []string   `json:"skills"`
	Location     *string    `json:"location"`
	Deadline     *time.Time `json:"deadline"`
}

// SearchJobsRequest is the query for GET /api/v1/jobs
type SearchJobsRequest struct {
	Keyword  string `form:"keyword"`
	Location string `form:"location"`
	Skill    string `form:"skill"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

// ApplyRequest is the body for POST /api/v1/jobs/:job_id/apply
type ApplyRequest struct {
	CoverLetter string `json:"cover_letter"`
}

// UpdateApplicationStatusRequest is the body for
// PATCH /api/v1/applications/:application_id/status
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateInterviewRequest is the body for POST /api/v1/interviews
type CreateInterviewRequest struct {
	ApplicationID string    `json:"application_id" binding:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	Location      string    `json:"location"`
	Notes         string    `json:"notes"`
}

// UpdateInterviewRequest is the body for PATCH /api/v1/interviews/:interview_id
type UpdateInterviewRequest struct {
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Location    *string    `json:"location"`
	Notes       *string    `json:"notes"`
}

// ListNotificationsRequest is the query for GET /api/v1/notifications
type ListNotificationsRequest struct {
	UnreadOnly bool `form:"unread_only"`
	Limit      int  `form:"limit"`
}
