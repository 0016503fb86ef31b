package appsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jobdeck/jobdeck-be/internal/domain"
	"github.com/jobdeck/jobdeck-be/internal/store"
)

// Sweep runs the daily notification purge. Rows older than the retention
// window are deleted; the sweep is safe to run from several instances since
// the DELETE is idempotent.
type Sweep struct {
	store    *store.Store
	logger   *slog.Logger
	schedule string
	cron     *cron.Cron
}

// NewSweep creates the purge sweep with a cron schedule expression
func NewSweep(st *store.Store, schedule string, logger *slog.Logger) *Sweep {
	if schedule == "" {
		schedule = "0 3 * * *"
	}
	return &Sweep{
		store:    st,
		logger:   logger,
		schedule: schedule,
	}
}

// Start schedules the sweep; it runs until Stop is called
func (s *Sweep) Start() error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Notification purge sweep scheduled",
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop halts the sweep, waiting for a running purge to finish
func (s *Sweep) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Sweep) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-domain.NotificationRetention)
	if _, err := s.store.PurgeOldNotifications(ctx, cutoff); err != nil {
		s.logger.Error("Notification purge failed",
			slog.String("error", err.Error()),
		)
	}
}
