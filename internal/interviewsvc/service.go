// Package interviewsvc implements the interview service. An interview is
// created by the recruiter owning the application's job; scheduling and
// completing an interview also moves the application, inside the same
// transaction. Cancelling never rolls the application back: an application
// that advanced past INTERVIEW_SCHEDULED keeps its status when the
// interview is cancelled.
package interviewsvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jobdeck/jobdeck-be/internal/domain"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
	"github.com/jobdeck/jobdeck-be/internal/store"
)

type notifier interface {
	Publish(ctx context.Context, n *domain.Notification)
}

// Service holds the interview service's dependencies
type Service struct {
	store    *store.Store
	notifier notifier
	logger   *slog.Logger
}

// NewService creates the interview service
func NewService(st *store.Store, n notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		notifier: n,
		logger:   logger,
	}
}

// Register installs all interview operations
func (s *Service) Register(srv *rpc.Server) {
	srv.Handle("interview.create", s.Create)
	srv.Handle("interview.update", s.Update)
	srv.Handle("interview.cancel", s.Cancel)
	srv.Handle("interview.getUpcoming", s.GetUpcoming)
}

// CreateArgs is the payload for interview.create
type CreateArgs struct {
	ApplicationID string    `json:"application_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Location      string    `json:"location,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// Create handles interview.create. In one transaction the interview row is
// inserted, the application moves to INTERVIEW_SCHEDULED, and the seeker's
// notification is written; if any of the three fails nothing is visible.
func (s *Service) Create(ctx context.Context, req *rpc.Request) (any, error) {
	var args CreateArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.ApplicationID == "" {
		return nil, domain.BadRequest("application_id is required")
	}

	if !args.ScheduledAt.After(time.Now()) {
		return nil, domain.BadRequest("interview time must be in the future")
	}

	app, err := s.store.GetApplication(ctx, args.ApplicationID)
	if err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != req.ActorID {
		return nil, domain.Forbidden("only the job's recruiter can schedule an interview")
	}

	if domain.ApplicationTerminal(app.Status) {
		return nil, domain.Conflict("application is already %s", app.Status)
	}

	now := time.Now()
	iv := &domain.Interview{
		InterviewID:   uuid.New().String(),
		ApplicationID: app.ApplicationID,
		SeekerID:      app.SeekerID,
		InterviewerID: req.ActorID,
		ScheduledAt:   args.ScheduledAt,
		Location:      args.Location,
		Notes:         sql.NullString{String: args.Notes, Valid: args.Notes != ""},
		Status:        domain.InterviewScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	notification := &domain.Notification{
		NotificationID: uuid.New().String(),
		UserID:         app.SeekerID,
		Type:           domain.NotifyInterview,
		Message:        fmt.Sprintf("Interview scheduled for %q on %s", job.Title, args.ScheduledAt.Format(time.RFC1123)),
		CreatedAt:      now,
	}

	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.InsertInterviewTx(ctx, tx, iv); err != nil {
			return err
		}
		if err := s.store.UpdateApplicationStatusTx(ctx, tx, app.ApplicationID, domain.ApplicationInterviewScheduled); err != nil {
			return err
		}
		return s.store.InsertNotificationTx(ctx, tx, notification)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, notification)

	s.logger.Info("Interview scheduled",
		slog.String("interview_id", iv.InterviewID),
		slog.String("application_id", app.ApplicationID),
		slog.Time("scheduled_at", args.ScheduledAt),
	)

	return iv, nil
}

// UpdateArgs is the payload for interview.update
type UpdateArgs struct {
	InterviewID string     `json:"interview_id"`
	Status      string     `json:"status,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// Update handles interview.update. Moving to COMPLETED also moves the
// application to INTERVIEW_COMPLETED in the same transaction.
func (s *Service) Update(ctx context.Context, req *rpc.Request) (any, error) {
	var args UpdateArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.InterviewID == "" {
		return nil, domain.BadRequest("interview_id is required")
	}

	iv, err := s.store.GetInterview(ctx, args.InterviewID)
	if err != nil {
		return nil, err
	}
	if req.ActorID != iv.SeekerID && req.ActorID != iv.InterviewerID {
		return nil, domain.Forbidden("not a party to this interview")
	}

	if domain.InterviewTerminal(iv.Status) {
		return nil, domain.BadRequest("interview is already %s", iv.Status)
	}

	if args.Status != "" {
		if !domain.InterviewCanTransition(iv.Status, args.Status) {
			return nil, domain.Conflict("cannot move interview from %s to %s", iv.Status, args.Status)
		}
		iv.Status = args.Status
	}

	if args.ScheduledAt != nil {
		if !args.ScheduledAt.After(time.Now()) {
			return nil, domain.BadRequest("interview time must be in the future")
		}
		iv.ScheduledAt = *args.ScheduledAt
	}
	if args.Location != nil {
		iv.Location = *args.Location
	}
	if args.Notes != nil {
		iv.Notes = sql.NullString{String: *args.Notes, Valid: true}
	}

	notification := &domain.Notification{
		NotificationID: uuid.New().String(),
		UserID:         s.counterparty(iv, req.ActorID),
		Type:           domain.NotifyInterview,
		Message:        fmt.Sprintf("Interview %s", iv.Status),
		CreatedAt:      time.Now(),
	}

	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.UpdateInterviewTx(ctx, tx, iv); err != nil {
			return err
		}
		if iv.Status == domain.InterviewCompleted {
			if err := s.store.UpdateApplicationStatusTx(ctx, tx, iv.ApplicationID, domain.ApplicationInterviewCompleted); err != nil {
				return err
			}
		}
		return s.store.InsertNotificationTx(ctx, tx, notification)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, notification)

	return iv, nil
}

// CancelArgs is the payload for interview.cancel
type CancelArgs struct {
	InterviewID string `json:"interview_id"`
}

// Cancel handles interview.cancel. Interviews are soft-cancelled, never
// deleted; an already-terminal interview is a BAD_REQUEST and writes
// nothing. The application keeps whatever status it reached.
func (s *Service) Cancel(ctx context.Context, req *rpc.Request) (any, error) {
	var args CancelArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.InterviewID == "" {
		return nil, domain.BadRequest("interview_id is required")
	}

	iv, err := s.store.GetInterview(ctx, args.InterviewID)
	if err != nil {
		return nil, err
	}
	if req.ActorID != iv.SeekerID && req.ActorID != iv.InterviewerID {
		return nil, domain.Forbidden("not a party to this interview")
	}

	if domain.InterviewTerminal(iv.Status) {
		return nil, domain.BadRequest("interview is already %s", iv.Status)
	}

	iv.Status = domain.InterviewCancelled
	notification := &domain.Notification{
		NotificationID: uuid.New().String(),
		UserID:         s.counterparty(iv, req.ActorID),
		Type:           domain.NotifyInterview,
		Message:        "Interview cancelled",
		CreatedAt:      time.Now(),
	}

	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.UpdateInterviewTx(ctx, tx, iv); err != nil {
			return err
		}
		return s.store.InsertNotificationTx(ctx, tx, notification)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, notification)

	s.logger.Info("Interview cancelled",
		slog.String("interview_id", iv.InterviewID),
		slog.String("application_id", iv.ApplicationID),
	)

	return iv, nil
}

// GetUpcoming handles interview.getUpcoming
func (s *Service) GetUpcoming(ctx context.Context, req *rpc.Request) (any, error) {
	if req.ActorID == "" {
		return nil, domain.Forbidden("authentication required")
	}

	interviews, err := s.store.ListUpcomingInterviews(ctx, req.ActorID, time.Now())
	if err != nil {
		return nil, err
	}
	if interviews == nil {
		interviews = []domain.Interview{}
	}

	return interviews, nil
}

// counterparty returns the other side of the interview relative to actorID
func (s *Service) counterparty(iv *domain.Interview, actorID string) string {
	if actorID == iv.SeekerID {
		return iv.InterviewerID
	}
	return iv.SeekerID
}
