package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobdeck/jobdeck-be/internal/domain"
)

// JobSearchFilter narrows a job search. Cursor pagination keys on
// (created_at, job_id) so pages stay stable while new jobs arrive.
type JobSearchFilter struct {
	Keyword  string
	Location string
	Skill    string
	PageSize int
	Cursor   *JobCursor
}

// JobCursor marks the position after the last job of the previous page
type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// CreateJob inserts a new job posting
func (s *Store) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, recruiter_id, company_id, title, description,
			requirements, skills, location, deadline, views, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, 0, $10, $11
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.RecruiterID,
		job.CompanyID,
		job.Title,
		job.Description,
		job.Requirements,
		job.Skills,
		job.Location,
		job.Deadline,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetJob retrieves a job by id
func (s *Store) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	var job domain.Job
	query := `
		SELECT
			job_id, recruiter_id, company_id, title, description,
			requirements, skills, location, deadline, views, created_at, updated_at
		FROM jobs
		WHERE job_id = $1
	`

	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("job %s not found", jobID)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// IncrementJobViews bumps the view counter. A lost increment under a read
// race is acceptable for a counter, so this runs outside any transaction.
func (s *Store) IncrementJobViews(ctx context.Context, jobID string) error {
	query := `UPDATE jobs SET views = views + 1 WHERE job_id = $1`

	if _, err := s.db.ExecContext(ctx, query, jobID); err != nil {
		return fmt.Errorf("failed to increment job views: %w", err)
	}
	return nil
}

// UpdateJob persists owner-editable fields of a job posting
func (s *Store) UpdateJob(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET title = $1,
		    description = $2,
		    requirements = $3,
		    skills = $4,
		    location = $5,
		    deadline = $6,
		    updated_at = $7
		WHERE job_id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		job.Title,
		job.Description,
		job.Requirements,
		job.Skills,
		job.Location,
		job.Deadline,
		time.Now(),
		job.JobID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("job %s not found", job.JobID)
	}

	return nil
}

// DeleteJob removes a job posting
func (s *Store) DeleteJob(ctx context.Context, jobID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("job %s not found", jobID)
	}

	s.logger.Info("Job deleted",
		slog.String("job_id", jobID),
	)
	return nil
}

// SearchJobs lists jobs matching the filter, newest first. One extra row
// beyond PageSize is fetched so the caller can tell whether more results
// exist.
func (s *Store) SearchJobs(ctx context.Context, filter JobSearchFilter) ([]domain.Job, error) {
	query := `
		SELECT
			job_id, recruiter_id, company_id, title, description,
			requirements, skills, location, deadline, views, created_at, updated_at
		FROM jobs
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Keyword != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Keyword+"%")
		argIdx++
	}

	if filter.Location != "" {
		query += fmt.Sprintf(" AND location ILIKE $%d", argIdx)
		args = append(args, "%"+filter.Location+"%")
		argIdx++
	}

	if filter.Skill != "" {
		query += fmt.Sprintf(" AND $%d = ANY(skills)", argIdx)
		args = append(args, filter.Skill)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, job_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, job_id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []domain.Job
	err := s.db.SelectContext(ctx, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}

	return jobs, nil
}
