// Package appsvc implements the application service: the recruiter-driven
// application status lifecycle and notification reads. Every status change
// commits together with exactly one notification row for the seeker; the
// live push happens only after the commit.
package appsvc

import (
	"context"
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

// Service holds the application service's dependencies
type Service struct {
	store    *store.Store
	notifier notifier
	logger   *slog.Logger
}

// NewService creates the application service
func NewService(st *store.Store, n notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		notifier: n,
		logger:   logger,
	}
}

// Register installs all application and notification operations
func (s *Service) Register(srv *rpc.Server) {
	srv.Handle("application.getById", s.GetByID)
	srv.Handle("application.updateStatus", s.UpdateStatus)
	srv.Handle("application.getByJob", s.GetByJob)
	srv.Handle("notification.list", s.ListNotifications)
	srv.Handle("notification.markRead", s.MarkNotificationRead)
	srv.Handle("notification.markAllRead", s.MarkAllNotificationsRead)
}

// GetByIDArgs is the payload for application.getById
type GetByIDArgs struct {
	ApplicationID string `json:"application_id"`
}

// GetByID handles application.getById. Only the seeker who applied or the
// recruiter owning the job may read an application.
func (s *Service) GetByID(ctx context.Context, req *rpc.Request) (any, error) {
	var args GetByIDArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.ApplicationID == "" {
		return nil, domain.BadRequest("application_id is required")
	}

	app, err := s.store.GetApplication(ctx, args.ApplicationID)
	if err != nil {
		return nil, err
	}

	if app.SeekerID != req.ActorID {
		job, err := s.store.GetJob(ctx, app.JobID)
		if err != nil {
			return nil, err
		}
		if job.RecruiterID != req.ActorID {
			return nil, domain.Forbidden("not a party to this application")
		}
	}

	return app, nil
}

// UpdateStatusArgs is the payload for application.updateStatus
type UpdateStatusArgs struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
}

// UpdateStatus handles application.updateStatus. Transitions are driven by
// the job's recruiter only; terminal applications reject every further
// change with CONFLICT. The guard table runs before the transaction opens,
// so a redelivered frame whose transition already happened is rejected
// rather than applied twice.
func (s *Service) UpdateStatus(ctx context.Context, req *rpc.Request) (any, error) {
	var args UpdateStatusArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.ApplicationID == "" {
		return nil, domain.BadRequest("application_id is required")
	}
	if !domain.ApplicationStatusValid(args.Status) {
		return nil, domain.BadRequest("unknown status %s", args.Status)
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
		return nil, domain.Forbidden("only the job's recruiter can update this application")
	}

	if domain.ApplicationTerminal(app.Status) {
		return nil, domain.Conflict("application is already %s", app.Status)
	}
	if !domain.ApplicationCanTransition(app.Status, args.Status) {
		return nil, domain.Conflict("cannot move application from %s to %s", app.Status, args.Status)
	}

	now := time.Now()
	notification := &domain.Notification{
		NotificationID: uuid.New().String(),
		UserID:         app.SeekerID,
		Type:           domain.NotifyApplication,
		Message:        fmt.Sprintf("Your application for %q is now %s", job.Title, args.Status),
		CreatedAt:      now,
	}

	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.UpdateApplicationStatusTx(ctx, tx, app.ApplicationID, args.Status); err != nil {
			return err
		}
		return s.store.InsertNotificationTx(ctx, tx, notification)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, notification)

	s.logger.Info("Application status updated",
		slog.String("application_id", app.ApplicationID),
		slog.String("from", app.Status),
		slog.String("to", args.Status),
	)

	app.Status = args.Status
	return app, nil
}

// GetByJobArgs is the payload for application.getByJob
type GetByJobArgs struct {
	JobID string `json:"job_id"`
}

// GetByJob handles application.getByJob
func (s *Service) GetByJob(ctx context.Context, req *rpc.Request) (any, error) {
	var args GetByJobArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.JobID == "" {
		return nil, domain.BadRequest("job_id is required")
	}

	job, err := s.store.GetJob(ctx, args.JobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != req.ActorID {
		return nil, domain.Forbidden("only the job's recruiter can list its applications")
	}

	apps, err := s.store.ListApplicationsByJob(ctx, args.JobID)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []domain.Application{}
	}

	return apps, nil
}

// ListNotificationsArgs is the payload for notification.list
type ListNotificationsArgs struct {
	UnreadOnly bool `json:"unread_only,omitempty"`
	Limit      int  `json:"limit,omitempty"`
}

// ListNotifications handles notification.list
func (s *Service) ListNotifications(ctx context.Context, req *rpc.Request) (any, error) {
	if req.ActorID == "" {
		return nil, domain.Forbidden("authentication required")
	}

	var args ListNotificationsArgs
	if err := json.Unmarshal(req.Args, &args); err != nil {
		return nil, domain.BadRequest("malformed notification.list args")
	}
	if args.Limit <= 0 || args.Limit > 200 {
		args.Limit = 50
	}

	notifications, err := s.store.ListNotifications(ctx, req.ActorID, args.UnreadOnly, args.Limit)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	return notifications, nil
}

// MarkReadArgs is the payload for notification.markRead
type MarkReadArgs struct {
	NotificationID string `json:"notification_id"`
}

// MarkNotificationRead handles notification.markRead
func (s *Service) MarkNotificationRead(ctx context.Context, req *rpc.Request) (any, error) {
	if req.ActorID == "" {
		return nil, domain.Forbidden("authentication required")
	}

	var args MarkReadArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.NotificationID == "" {
		return nil, domain.BadRequest("notification_id is required")
	}

	if err := s.store.MarkNotificationRead(ctx, args.NotificationID, req.ActorID); err != nil {
		return nil, err
	}

	return map[string]string{"notification_id": args.NotificationID}, nil
}

// MarkAllNotificationsRead handles notification.markAllRead
func (s *Service) MarkAllNotificationsRead(ctx context.Context, req *rpc.Request) (any, error) {
	if req.ActorID == "" {
		return nil, domain.Forbidden("authentication required")
	}

	updated, err := s.store.MarkAllNotificationsRead(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	return map[string]int64{"updated": updated}, nil
}
