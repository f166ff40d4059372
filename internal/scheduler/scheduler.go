package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// rolloverTimeout bounds a full sweep over the progress collection.
const rolloverTimeout = 5 * time.Minute

// Gamification is the slice of the gamification service the jobs need.
type Gamification interface {
	RolloverDaily(ctx context.Context) (int, error)
	RolloverSeason(ctx context.Context) (int, error)
	SeasonStartsToday() bool
}

// Scheduler runs the midnight counter rollovers in-process.
type Scheduler struct {
	scheduler *gocron.Scheduler
	svc       Gamification
	logger    *slog.Logger
}

// New creates a scheduler whose jobs fire at midnight in the given timezone.
func New(loc *time.Location, svc Gamification, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		svc:       svc,
		logger:    logger,
	}
}

// Start registers the jobs and runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Day().At("00:00").Do(s.runRollover)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runRollover() {
	ctx, cancel := context.WithTimeout(context.Background(), rolloverTimeout)
	defer cancel()

	count, err := s.svc.RolloverDaily(ctx)
	if err != nil {
		s.logger.Error("daily rollover failed", "error", err)
	} else {
		s.logger.Info("daily rollover complete", "users", count)
	}

	if !s.svc.SeasonStartsToday() {
		return
	}

	count, err = s.svc.RolloverSeason(ctx)
	if err != nil {
		s.logger.Error("season rollover failed", "error", err)
		return
	}
	s.logger.Info("season rollover complete", "users", count)
}
