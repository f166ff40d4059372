package checkin

import (
	"context"
	"errors"
	"time"
)

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

// Service owns the check-in store operations. Point awarding and streak
// recalculation are separate engine calls made by the HTTP layer after a
// successful save, mirroring the UI-triggered control flow.
type Service struct {
	repo  Repository
	clock Clock
	loc   *time.Location
}

// NewService creates a new check-in service.
func NewService(repo Repository, clock Clock, loc *time.Location) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, clock: clock, loc: loc}, nil
}

// Today returns the current day truncated to midnight in the service timezone.
func (s *Service) Today() time.Time {
	return truncateToDay(s.clock.Now().In(s.loc))
}

// SaveMorning records the morning intentions for today.
func (s *Service) SaveMorning(ctx context.Context, userID string, input MorningInput) (*CheckIn, error) {
	if userID == "" {
		return nil, errors.New("missing user id")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ApplyMorning(ctx, userID, s.Today(), input, s.clock.Now().UTC())
}

// SaveEvening records the evening wrap for today.
func (s *Service) SaveEvening(ctx context.Context, userID string, input EveningInput) (*CheckIn, error) {
	if userID == "" {
		return nil, errors.New("missing user id")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ApplyEvening(ctx, userID, s.Today(), input, s.clock.Now().UTC())
}

// GetToday returns today's check-in or ErrNotFound.
func (s *Service) GetToday(ctx context.Context, userID string) (*CheckIn, error) {
	if userID == "" {
		return nil, errors.New("missing user id")
	}
	return s.repo.Get(ctx, userID, s.Today())
}

// GetByDate returns the check-in for the given day or ErrNotFound.
func (s *Service) GetByDate(ctx context.Context, userID string, day time.Time) (*CheckIn, error) {
	if userID == "" {
		return nil, errors.New("missing user id")
	}
	return s.repo.Get(ctx, userID, truncateToDay(day.In(s.loc)))
}

// History returns the user's check-ins for the trailing number of days.
func (s *Service) History(ctx context.Context, userID string, days int) ([]*CheckIn, error) {
	if userID == "" {
		return nil, errors.New("missing user id")
	}
	if days <= 0 {
		days = 30
	}
	end := s.Today().AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)
	return s.repo.ListRange(ctx, userID, start, end)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
