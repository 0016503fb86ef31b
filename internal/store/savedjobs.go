package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jobdeck/jobdeck-be/internal/domain"
)

// SaveJob bookmarks a job for a user. The primary key on (user_id, job_id)
// makes a repeated save a CONFLICT rather than a second row.
func (s *Store) SaveJob(ctx context.Context, userID, jobID string) error {
	query := `
		INSERT INTO saved_jobs (user_id, job_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.db.ExecContext(ctx, query, userID, jobID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("job already saved")
		}
		return fmt.Errorf("failed to save job: %w", err)
	}

	return nil
}

// UnsaveJob removes a bookmark
func (s *Store) UnsaveJob(ctx context.Context, userID, jobID string) error {
	query := `DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`

	result, err := s.db.ExecContext(ctx, query, userID, jobID)
	if err != nil {
		return fmt.Errorf("failed to unsave job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("job %s is not saved", jobID)
	}

	return nil
}

// ListSavedJobs lists the jobs a user bookmarked, newest bookmark first
func (s *Store) ListSavedJobs(ctx context.Context, userID string) ([]domain.Job, error) {
	query := `
		SELECT j.job_id, j.recruiter_id, j.company_id, j.title, j.description,
		       j.requirements, j.skills, j.location, j.deadline, j.views,
		       j.created_at, j.updated_at
		FROM saved_jobs sj
		JOIN jobs j ON j.job_id = sj.job_id
		WHERE sj.user_id = $1
		ORDER BY sj.created_at DESC
	`

	var jobs []domain.Job
	err := s.db.SelectContext(ctx, &jobs, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved jobs: %w", err)
	}

	return jobs, nil
}
