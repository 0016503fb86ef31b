// Package jobsvc implements the job service: job postings, applying to a
// job, and bookmarks. It consumes the job queue and registers one handler
// per operation.
package jobsvc

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

// RoleRecruiter and RoleSeeker are the two actor roles the marketplace
// distinguishes.
const (
	RoleRecruiter = "recruiter"
	RoleSeeker    = "seeker"
)

type notifier interface {
	Publish(ctx context.Context, n *domain.Notification)
}

// Service holds the job service's dependencies
type Service struct {
	store    *store.Store
	notifier notifier
	logger   *slog.Logger
}

// NewService creates the job service
func NewService(st *store.Store, n notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		notifier: n,
		logger:   logger,
	}
}

// Register installs all job operations on the server
func (s *Service) Register(srv *rpc.Server) {
	srv.Handle("job.create", s.Create)
	srv.Handle("job.getById", s.GetByID)
	srv.Handle("job.search", s.Search)
	srv.Handle("job.update", s.Update)
	srv.Handle("job.delete", s.Delete)
	srv.Handle("job.apply", s.Apply)
	srv.Handle("job.save", s.Save)
	srv.Handle("job.unsave", s.Unsave)
	srv.Handle("job.getSaved", s.GetSaved)
}

// CreateArgs is the payload for job.create
type CreateArgs struct {
	CompanyID    string    `json:"company_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Skills       []string  `json:"skills"`
	Location     string    `json:"location"`
	Deadline     time.Time `json:"deadline"`
}

// Create handles job.create
func (s *Service) Create(ctx context.Context, req *rpc.Request) (any, error) {
	if req.ActorRole != RoleRecruiter {
		return nil, domain.Forbidden("only recruiters can post jobs")
	}

	var args CreateArgs
	if err := json.Unmarshal(req.Args, &args); err != nil {
		return nil, domain.BadRequest("malformed job.create args")
	}

	if args.Title == "" {
		return nil, domain.BadRequest("title is required")
	}
	if !args.Deadline.After(time.Now()) {
		return nil, domain.BadRequest("deadline must be in the future")
	}

	now := time.Now()
	job := &domain.Job{
		JobID:        uuid.New().String(),
		RecruiterID:  req.ActorID,
		CompanyID:    args.CompanyID,
		Title:        args.Title,
		Description:  args.Description,
		Requirements: args.Requirements,
		Skills:       args.Skills,
		Location:     args.Location,
		Deadline:     args.Deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Job created",
		slog.String("job_id", job.JobID),
		slog.String("recruiter_id", job.RecruiterID),
	)

	return job, nil
}

// GetByIDArgs is the payload for job.getById
type GetByIDArgs struct {
	JobID string `json:"job_id"`
}

// GetByID handles job.getById
func (s *Service) GetByID(ctx context.Context, req *rpc.Request) (any, error) {
	var args GetByIDArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.JobID == "" {
		return nil, domain.BadRequest("job_id is required")
	}

	job, err := s.store.GetJob(ctx, args.JobID)
	if err != nil {
		return nil, err
	}

	if err := s.store.IncrementJobViews(ctx, args.JobID); err != nil {
		s.logger.Warn("Failed to increment job views",
			slog.String("job_id", args.JobID),
			slog.String("error", err.Error()),
		)
	}

	return job, nil
}

// SearchArgs is the payload for job.search
type SearchArgs struct {
	Keyword  string `json:"keyword,omitempty"`
	Location string `json:"location,omitempty"`
	Skill    string `json:"skill,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	Cursor   string `json:"cursor,omitempty"`
}

// SearchResult is the reply payload for job.search
type SearchResult struct {
	Jobs       []domain.Job `json:"jobs"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// Search handles job.search
func (s *Service) Search(ctx context.Context, req *rpc.Request) (any, error) {
	var args SearchArgs
	if err := json.Unmarshal(req.Args, &args); err != nil {
		return nil, domain.BadRequest("malformed job.search args")
	}

	if args.PageSize <= 0 {
		args.PageSize = 20
	}
	if args.PageSize > 100 {
		args.PageSize = 100
	}

	cursor, err := DecodeCursor(args.Cursor)
	if err != nil {
		return nil, domain.BadRequest("invalid cursor")
	}

	jobs, err := s.store.SearchJobs(ctx, store.JobSearchFilter{
		Keyword:  args.Keyword,
		Location: args.Location,
		Skill:    args.Skill,
		PageSize: args.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		return nil, err
	}

	result := SearchResult{Jobs: jobs}
	if len(jobs) > args.PageSize {
		result.Jobs = jobs[:args.PageSize]
		last := result.Jobs[len(result.Jobs)-1]
		result.NextCursor = EncodeCursor(&store.JobCursor{
			CreatedAt: last.CreatedAt,
			JobID:     last.JobID,
		})
	}
	if result.Jobs == nil {
		result.Jobs = []domain.Job{}
	}

	return result, nil
}

// UpdateArgs is the payload for job.update
type UpdateArgs struct {
	JobID        string     `json:"job_id"`
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Requirements []string   `json:"requirements,omitempty"`
	Skills       []string   `json:"skills,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

// Update handles job.update
func (s *Service) Update(ctx context.Context, req *rpc.Request) (any, error) {
	var args UpdateArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.JobID == "" {
		return nil, domain.BadRequest("job_id is required")
	}

	job, err := s.store.GetJob(ctx, args.JobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != req.ActorID {
		return nil, domain.Forbidden("only the owning recruiter can edit this job")
	}

	if args.Title != nil {
		if *args.Title == "" {
			return nil, domain.BadRequest("title cannot be empty")
		}
		job.Title = *args.Title
	}
	if args.Description != nil {
		job.Description = *args.Description
	}
	if args.Requirements != nil {
		job.Requirements = args.Requirements
	}
	if args.Skills != nil {
		job.Skills = args.Skills
	}
	if args.Location != nil {
		job.Location = *args.Location
	}
	if args.Deadline != nil {
		if !args.Deadline.After(time.Now()) {
			return nil, domain.BadRequest("deadline must be in the future")
		}
		job.Deadline = *args.Deadline
	}

	if err := s.store.UpdateJob(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

// Delete handles job.delete
func (s *Service) Delete(ctx context.Context, req *rpc.Request) (any, error) {
	var args GetByIDArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.JobID == "" {
		return nil, domain.BadRequest("job_id is required")
	}

	job, err := s.store.GetJob(ctx, args.JobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != req.ActorID {
		return nil, domain.Forbidden("only the owning recruiter can delete this job")
	}

	if err := s.store.DeleteJob(ctx, args.JobID); err != nil {
		return nil, err
	}

	return map[string]string{"job_id": args.JobID}, nil
}

// ApplyArgs is the payload for job.apply
type ApplyArgs struct {
	JobID       string `json:"job_id"`
	CoverLetter string `json:"cover_letter,omitempty"`
}

// Apply handles job.apply. The application row and the recruiter's
// notification commit in one transaction; the uniqueness constraint on
// (seeker_id, job_id) turns a duplicate apply into CONFLICT, which also
// makes redelivered frames harmless.
func (s *Service) Apply(ctx context.Context, req *rpc.Request) (any, error) {
	if req.ActorID == "" {
		return nil, domain.Forbidden("authentication required")
	}

	var args ApplyArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.JobID == "" {
		return nil, domain.BadRequest("job_id is required")
	}

	job, err := s.store.GetJob(ctx, args.JobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID == req.ActorID {
		return nil, domain.Forbidden("cannot apply to your own job")
	}
	if !job.Deadline.After(time.Now()) {
		return nil, domain.BadRequest("application deadline has passed")
	}

	now := time.Now()
	app := &domain.Application{
		ApplicationID: uuid.New().String(),
		JobID:         job.JobID,
		SeekerID:      req.ActorID,
		CoverLetter:   args.CoverLetter,
		Status:        domain.ApplicationPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	notification := &domain.Notification{
		NotificationID: uuid.New().String(),
		UserID:         job.RecruiterID,
		Type:           domain.NotifyApplication,
		Message:        fmt.Sprintf("New application for %q", job.Title),
		CreatedAt:      now,
	}

	err = s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.store.InsertApplicationTx(ctx, tx, app); err != nil {
			return err
		}
		return s.store.InsertNotificationTx(ctx, tx, notification)
	})
	if err != nil {
		return nil, err
	}

	// Live push only after the commit
	s.notifier.Publish(ctx, notification)

	s.logger.Info("Application created",
		slog.String("application_id", app.ApplicationID),
		slog.String("job_id", job.JobID),
		slog.String("seeker_id", app.SeekerID),
	)

	return app, nil
}

// Save handles job.save
func (s *Service) Save(ctx context.Context, req *rpc.Request) (any, error) {
	if req.ActorID == "" {
		return nil, domain.Forbidden("authentication required")
	}

	var args GetByIDArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.JobID == "" {
		return nil, domain.BadRequest("job_id is required")
	}

	if _, err := s.store.GetJob(ctx, args.JobID); err != nil {
		return nil, err
	}

	if err := s.store.SaveJob(ctx, req.ActorID, args.JobID); err != nil {
		return nil, err
	}

	return map[string]string{"job_id": args.JobID}, nil
}

// Unsave handles job.unsave
func (s *Service) Unsave(ctx context.Context, req *rpc.Request) (any, error) {
	if req.ActorID == "" {
		return nil, domain.Forbidden("authentication required")
	}

	var args GetByIDArgs
	if err := json.Unmarshal(req.Args, &args); err != nil || args.JobID == "" {
		return nil, domain.BadRequest("job_id is required")
	}

	if err := s.store.UnsaveJob(ctx, req.ActorID, args.JobID); err != nil {
		return nil, err
	}

	return map[string]string{"job_id": args.JobID}, nil
}

// GetSaved handles job.getSaved
func (s *Service) GetSaved(ctx context.Context, req *rpc.Request) (any, error) {
	if req.ActorID == "" {
		return nil, domain.Forbidden("authentication required")
	}

	jobs, err := s.store.ListSavedJobs(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}

	return jobs, nil
}
