package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron for periodic rebuilds, so future-dated posts get
// published once their date passes without a manual build.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleRebuild registers a periodic rebuild firing trigger every interval.
func (s *Scheduler) ScheduleRebuild(interval time.Duration, trigger func(reason string)) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { trigger("scheduled") }),
		gocron.WithName("scheduled-rebuild"),
	)
	if err != nil {
		return fmt.Errorf("schedule rebuild job: %w", err)
	}
	slog.Info("Scheduled periodic rebuilds", slog.Duration("interval", interval))
	return nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() { s.scheduler.Start() }

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error { return s.scheduler.Shutdown() }
