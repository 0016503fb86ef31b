package domain

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Job is a posting owned by one recruiter and one company.
type Job struct {
	JobID        string         `db:"job_id" json:"job_id"`
	RecruiterID  string         `db:"recruiter_id" json:"recruiter_id"`
	CompanyID    string         `db:"company_id" json:"company_id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Requirements pq.StringArray `db:"requirements" json:"requirements"`
	Skills       pq.StringArray `db:"skills" json:"skills"`
	Location     string         `db:"location" json:"location"`
	Deadline     time.Time      `db:"deadline" json:"deadline"`
	Views        int64          `db:"views" json:"views"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Application links one seeker to one job. At most one row may exist per
// (seeker_id, job_id) pair; the database uniqueness constraint is the
// arbiter under concurrent applies.
type Application struct {
	ApplicationID string    `db:"application_id" json:"application_id"`
	JobID         string    `db:"job_id" json:"job_id"`
	SeekerID      string    `db:"seeker_id" json:"seeker_id"`
	CoverLetter   string    `db:"cover_letter" json:"cover_letter"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Interview belongs to exactly one application. Seeker and interviewer ids
// are denormalized from the application for authorization checks.
type Interview struct {
	InterviewID   string         `db:"interview_id" json:"interview_id"`
	ApplicationID string         `db:"application_id" json:"application_id"`
	SeekerID      string         `db:"seeker_id" json:"seeker_id"`
	InterviewerID string         `db:"interviewer_id" json:"interviewer_id"`
	ScheduledAt   time.Time      `db:"scheduled_at" json:"scheduled_at"`
	Location      string         `db:"location" json:"location"`
	Notes         sql.NullString `db:"notes" json:"-"`
	Status        string         `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Notification is an append-only record addressed to one user. Rows older
// than 90 days are removed by the maintenance sweep.
type Notification struct {
	NotificationID string    `db:"notification_id" json:"notification_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Type           string    `db:"type" json:"type"`
	Message        string    `db:"message" json:"message"`
	Read           bool      `db:"read" json:"read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// SavedJob is a bookmark, unique per (user_id, job_id).
type SavedJob struct {
	UserID    string    `db:"user_id" json:"user_id"`
	JobID     string    `db:"job_id" json:"job_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NotificationRetention is how long notification rows are kept before the
// purge sweep removes them.
const NotificationRetention = 90 * 24 * time.Hour
