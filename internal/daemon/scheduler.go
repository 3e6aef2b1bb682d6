package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// retentionSweepInterval is how often the event store prune job runs.
const retentionSweepInterval = time.Hour

// Scheduler wraps gocron for the daemon's periodic jobs: the status audit
// and event store retention sweep.
type Scheduler struct {
	scheduler gocron.Scheduler
	daemon    *Daemon
}

// NewScheduler creates a scheduler bound to the daemon.
func NewScheduler(d *Daemon) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, daemon: d}, nil
}

// Start registers the periodic jobs and begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.daemon.config.Audit.Interval),
		gocron.NewTask(func() { s.daemon.auditStatus(ctx) }),
		gocron.WithName("status-audit"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule status audit: %w", err)
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(retentionSweepInterval),
		gocron.NewTask(func() { s.daemon.pruneEventStore(ctx) }),
		gocron.WithName("eventstore-prune"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule event store prune: %w", err)
	}

	slog.Info("Starting scheduler",
		slog.Duration("audit_interval", s.daemon.config.Audit.Interval),
		slog.Duration("prune_interval", retentionSweepInterval))
	s.scheduler.Start()
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(_ context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
