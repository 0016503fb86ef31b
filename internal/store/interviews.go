package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jobdeck/jobdeck-be/internal/domain"
)

// InsertInterviewTx inserts an interview inside an open transaction. The
// unique constraint on application_id enforces the one-interview-per-
// application rule.
func (s *Store) InsertInterviewTx(ctx context.Context, tx *sqlx.Tx, iv *domain.Interview) error {
	query := `
		INSERT INTO interviews (
			interview_id, application_id, seeker_id, interviewer_id,
			scheduled_at, location, notes, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10
		)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		iv.InterviewID,
		iv.ApplicationID,
		iv.SeekerID,
		iv.InterviewerID,
		iv.ScheduledAt,
		iv.Location,
		iv.Notes,
		iv.Status,
		iv.CreatedAt,
		iv.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("an interview already exists for this application")
		}
		return fmt.Errorf("failed to insert interview: %w", err)
	}

	return nil
}

// GetInterview retrieves an interview by id
func (s *Store) GetInterview(ctx context.Context, interviewID string) (*domain.Interview, error) {
	var iv domain.Interview
	query := `
		SELECT interview_id, application_id, seeker_id, interviewer_id,
		       scheduled_at, location, notes, status, created_at, updated_at
		FROM interviews
		WHERE interview_id = $1
	`

	err := s.db.GetContext(ctx, &iv, query, interviewID)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound("interview %s not found", interviewID)
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	return &iv, nil
}

// UpdateInterviewTx persists interview changes inside an open transaction
func (s *Store) UpdateInterviewTx(ctx context.Context, tx *sqlx.Tx, iv *domain.Interview) error {
	query := `
		UPDATE interviews
		SET status = $1,
		    scheduled_at = $2,
		    location = $3,
		    notes = $4,
		    updated_at = $5
		WHERE interview_id = $6
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		iv.Status,
		iv.ScheduledAt,
		iv.Location,
		iv.Notes,
		time.Now(),
		iv.InterviewID,
	)
	if err != nil {
		return fmt.Errorf("failed to update interview: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("interview %s not found", iv.InterviewID)
	}

	return nil
}

// ListUpcomingInterviews lists non-terminal interviews scheduled after the
// given instant for a user, as seeker or interviewer, soonest first.
func (s *Store) ListUpcomingInterviews(ctx context.Context, userID string, after time.Time) ([]domain.Interview, error) {
	query := `
		SELECT interview_id, application_id, seeker_id, interviewer_id,
		       scheduled_at, location, notes, status, created_at, updated_at
		FROM interviews
		WHERE (seeker_id = $1 OR interviewer_id = $1)
		  AND scheduled_at > $2
		  AND status NOT IN ($3, $4)
		ORDER BY scheduled_at ASC
	`

	var interviews []domain.Interview
	err := s.db.SelectContext(ctx, &interviews, query, userID, after, domain.InterviewCancelled, domain.InterviewCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming interviews: %w", err)
	}

	return interviews, nil
}
