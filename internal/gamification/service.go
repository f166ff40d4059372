package gamification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salesquest/gamification-service/internal/checkin"
)

// maxStreakDays bounds the backward walk. A 400-day run reports 365.
const maxStreakDays = 365

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystemClock returns a Clock implementation backed by time.Now.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ScoreRecorder feeds point deltas into the season leaderboard. The board is
// a rebuildable cache over user_progress; an award must never fail on it.
type ScoreRecorder interface {
	Record(ctx context.Context, seasonID, userID string, delta int) error
}

// Service implements the points engine and the streak calculator.
type Service struct {
	repo     Repository
	checkins checkin.Repository
	calendar *BusinessCalendar
	clock    Clock
	scores   ScoreRecorder
}

// NewService creates a new gamification service. The score recorder is
// optional; everything else is required.
func NewService(repo Repository, checkins checkin.Repository, calendar *BusinessCalendar, clock Clock, scores ScoreRecorder) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if checkins == nil {
		return nil, errors.New("check-in repo is required")
	}
	if calendar == nil {
		return nil, errors.New("calendar is required")
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Service{repo: repo, checkins: checkins, calendar: calendar, clock: clock, scores: scores}, nil
}

// AwardDailyActivityPoints grants the fixed point value for a first-time
// completion of the given activity today, plus the daily bonus when this is
// the second of the two activities. Repeat calls on the same day are
// zero-delta no-ops.
func (s *Service) AwardDailyActivityPoints(ctx context.Context, userID string, activity ActivityType) (AwardResult, error) {
	if userID == "" {
		return AwardResult{}, errors.New("missing user id")
	}
	if !activity.Valid() {
		return AwardResult{}, fmt.Errorf("%w: %s", ErrUnknownActivity, activity)
	}

	now := s.clock.Now()
	day := s.calendar.Today(now)

	result, err := s.repo.AwardActivity(ctx, userID, day, activity)
	if err != nil {
		return AwardResult{}, err
	}

	if delta := result.Total(); delta > 0 && s.scores != nil {
		// Best effort: the board is rebuilt from user_progress on drift.
		_ = s.scores.Record(ctx, CurrentSeason(now).ID, userID, delta)
	}

	return result, nil
}

// CalculateStreakForToday recomputes the user's consecutive-business-day
// streak and persists it together with any newly crossed achievements. On a
// non-business day it returns the stored streak untouched. Store failures are
// reported as errors so callers can tell "no streak" from "could not compute".
func (s *Service) CalculateStreakForToday(ctx context.Context, userID string) (StreakResult, error) {
	if userID == "" {
		return StreakResult{}, errors.New("missing user id")
	}

	now := s.clock.Now()
	today := s.calendar.Today(now)

	progress, err := s.repo.GetProgress(ctx, userID)
	if err != nil {
		return StreakResult{}, fmt.Errorf("load progress: %w", err)
	}

	if !s.calendar.IsBusinessDay(today) {
		return StreakResult{Streak: progress.Streak}, nil
	}

	todayRecord, err := s.checkins.Get(ctx, userID, today)
	if err != nil && !errors.Is(err, checkin.ErrNotFound) {
		return StreakResult{}, fmt.Errorf("load today's check-in: %w", err)
	}

	if todayRecord != nil && todayRecord.Complete() {
		streak, err := s.walkBack(ctx, userID, today)
		if err != nil {
			return StreakResult{}, err
		}
		return s.persistStreak(ctx, userID, progress, streak, now)
	}

	// Today is absent or incomplete. The streak survives only while the last
	// recorded activity is today (still pending) or the previous business day.
	lastActive := progress.LastActivityDate
	if lastActive == DateKey(today) || lastActive == DateKey(s.calendar.PreviousBusinessDay(today)) {
		return StreakResult{Streak: progress.Streak}, nil
	}
	if progress.Streak == 0 {
		return StreakResult{}, nil
	}
	return s.persistStreak(ctx, userID, progress, 0, now)
}

// walkBack counts consecutive complete business days ending today. Today is
// already known to be complete when this is called.
func (s *Service) walkBack(ctx context.Context, userID string, today time.Time) (int, error) {
	streak := 1
	day := today
	for streak < maxStreakDays {
		day = s.calendar.PreviousBusinessDay(day)
		record, err := s.checkins.Get(ctx, userID, day)
		if errors.Is(err, checkin.ErrNotFound) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("walk day %s: %w", DateKey(day), err)
		}
		if !record.Complete() {
			break
		}
		streak++
	}
	return streak, nil
}

func (s *Service) persistStreak(ctx context.Context, userID string, progress *UserProgress, streak int, now time.Time) (StreakResult, error) {
	unlocked := newlyUnlocked(progress, streak)
	changed := streak != progress.Streak || len(unlocked) > 0
	if changed {
		if err := s.repo.SetStreak(ctx, userID, streak, unlocked, now.UTC()); err != nil {
			return StreakResult{}, fmt.Errorf("persist streak: %w", err)
		}
	}
	return StreakResult{Streak: streak, Changed: changed, NewAchievements: unlocked}, nil
}

// ProgressSummary combines the stored aggregate with derived season state.
type ProgressSummary struct {
	UserProgress
	Rank       Rank             `json:"rank"`
	NextRank   *Rank            `json:"next_rank,omitempty"`
	Season     Season           `json:"season"`
	TodayState checkin.DayState `json:"today_state"`
}

// GetProgress loads the user's aggregate and today's check-in state
// concurrently and derives the rank view.
func (s *Service) GetProgress(ctx context.Context, userID string) (*ProgressSummary, error) {
	if userID == "" {
		return nil, errors.New("missing user id")
	}

	var (
		progress   *UserProgress
		todayState = checkin.StateEmpty
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.repo.GetProgress(ctx, userID)
		if err != nil {
			return err
		}
		progress = p
		return nil
	})

	g.Go(func() error {
		record, err := s.checkins.Get(ctx, userID, s.calendar.Today(s.clock.Now()))
		if errors.Is(err, checkin.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		todayState = record.State
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &ProgressSummary{
		UserProgress: *progress,
		Rank:         RankForPoints(progress.SeasonPoints),
		Season:       CurrentSeason(s.clock.Now()),
		TodayState:   todayState,
	}
	if next, ok := NextRank(progress.SeasonPoints); ok {
		summary.NextRank = &next
	}
	return summary, nil
}

// RolloverDaily clears every user's today_points. Run once per midnight.
func (s *Service) RolloverDaily(ctx context.Context) (int, error) {
	return s.repo.ResetDailyCounters(ctx)
}

// RolloverSeason clears every user's season_points. Run on season start days.
func (s *Service) RolloverSeason(ctx context.Context) (int, error) {
	return s.repo.ResetSeasonCounters(ctx)
}

// Season returns the season containing the current instant.
func (s *Service) Season() Season {
	return CurrentSeason(s.clock.Now())
}

// SeasonStartsToday reports whether the calendar day for the given instant
// opens a new season.
func (s *Service) SeasonStartsToday() bool {
	return IsSeasonStart(s.calendar.Today(s.clock.Now()))
}
