package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
	"git.home.luguber.info/inful/eventmetrics/internal/metrics"
)

// Scheduler wraps a gocron scheduler running the periodic push.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// SchedulePush pushes the registry every interval. Returns the job ID.
func (s *Scheduler) SchedulePush(ctx context.Context, interval time.Duration, pusher *metrics.Pusher) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(pusher.PushAndLog, ctx),
		gocron.WithName("push"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create push job: %w", err)
	}
	s.logger.Info("Scheduled metrics push",
		logfields.Gateway(pusher.URL()),
		slog.Duration("interval", interval))
	return job.ID().String(), nil
}

// Jobs reports the number of scheduled jobs.
func (s *Scheduler) Jobs() int { return len(s.scheduler.Jobs()) }

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
