package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jobdeck/jobdeck-be/internal/domain"
)

// InsertApplicationTx inserts an application inside an open transaction.
// The unique constraint on (seeker_id, job_id) arbitrates concurrent
// applies: the second insert fails with CONFLICT.
func (s *Store) InsertApplicationTx(ctx context.Context, tx *sqlx.Tx, app *domain.Application) error {
	query := `
		INSERT INTO applications (
			application_id, job_id, seeker_id, cover_letter, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		app.ApplicationID,
		app.JobID,
		app.SeekerID,
		app.CoverLetter,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("already applied to this job")
		}
		return fmt.Errorf("failed to insert application: %w", err)
	}

	return nil
}

// GetApplication retrieves an application by id
func (s *Store) GetApplication(ctx context.Context, applicationID string) (*domain.Application, error) {
	var app domain.Application
	query := `
		SELECT application_id, job_id, seeker_id, cover_letter, status, created_at, updated_at
		FROM applications
		WHERE application_id = $1
	`

	err := s.db.GetContext(ctx, &app, query, applicationID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("application %s not found", applicationID)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// ListApplicationsByJob lists all applications for one job, newest first
func (s *Store) ListApplicationsByJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	query := `
		SELECT application_id, job_id, seeker_id, cover_letter, status, created_at, updated_at
		FROM applications
		WHERE job_id = $1
		ORDER BY created_at DESC, application_id DESC
	`

	var apps []domain.Application
	err := s.db.SelectContext(ctx, &apps, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, nil
}

// UpdateApplicationStatusTx persists a status transition inside an open
// transaction. Legality of the transition is the caller's responsibility;
// the guard runs before the transaction opens.
func (s *Store) UpdateApplicationStatusTx(ctx context.Context, tx *sqlx.Tx, applicationID, status string) error {
	query := `
		UPDATE applications
		SET status = $1,
		    updated_at = $2
		WHERE application_id = $3
	`

	result, err := tx.ExecContext(ctx, query, status, time.Now(), applicationID)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("application %s not found", applicationID)
	}

	return nil
}
