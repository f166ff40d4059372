package gamification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/salesquest/gamification-service/internal/checkin"
)

type memoryRepository struct {
	mu       sync.Mutex
	checkins checkin.Repository
	progress map[string]*UserProgress
	flags    map[string]map[string]bool // checkin docID -> award flags
}

// NewMemoryRepository returns an in-memory repository intended for local
// development and tests. Award flags are tracked here rather than on the
// check-in document, which is an implementation detail of the twin.
func NewMemoryRepository(checkins checkin.Repository) Repository {
	return &memoryRepository{
		checkins: checkins,
		progress: make(map[string]*UserProgress),
		flags:    make(map[string]map[string]bool),
	}
}

func (r *memoryRepository) GetProgress(_ context.Context, userID string) (*UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	progress, ok := r.progress[userID]
	if !ok {
		return defaultProgress(userID), nil
	}
	clone := *progress
	clone.Achievements = append([]string(nil), progress.Achievements...)
	return &clone, nil
}

func (r *memoryRepository) AwardActivity(ctx context.Context, userID string, day time.Time, activity ActivityType) (AwardResult, error) {
	record, err := r.checkins.Get(ctx, userID, day)
	if errors.Is(err, checkin.ErrNotFound) {
		return AwardResult{}, ErrCheckInMissing
	}
	if err != nil {
		return AwardResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	docID := checkin.DocID(userID, day)
	flags, ok := r.flags[docID]
	if !ok {
		flags = make(map[string]bool)
		r.flags[docID] = flags
	}

	result := AwardResult{Activity: activity}
	if flags[string(activity)] {
		return result, nil
	}

	result.Awarded = true
	result.Points = ActivityPoints
	if flags[string(activity.other())] && !flags[AwardKeyDailyBonus] {
		result.BonusAwarded = true
		result.BonusPoints = DailyBonusPoints
	}

	flags[string(activity)] = true
	if result.BonusAwarded {
		flags[AwardKeyDailyBonus] = true
	}

	progress := r.ensure(userID)
	delta := result.Total()
	progress.TodayPoints += delta
	progress.SeasonPoints += delta
	progress.LifetimePoints += delta
	progress.XP += delta
	progress.LastActivityDate = DateKey(day)
	if activity == ActivityEveningWrap && record.Sales > 0 {
		progress.SalesDayCount++
	}
	progress.UpdatedAt = time.Now().UTC()

	return result, nil
}

func (r *memoryRepository) SetStreak(_ context.Context, userID string, streak int, newAchievements []string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	progress := r.ensure(userID)
	progress.Streak = streak
	for _, id := range newAchievements {
		if !progress.HasAchievement(id) {
			progress.Achievements = append(progress.Achievements, id)
		}
	}
	progress.UpdatedAt = now
	return nil
}

func (r *memoryRepository) ResetDailyCounters(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, progress := range r.progress {
		if progress.TodayPoints != 0 {
			progress.TodayPoints = 0
			count++
		}
	}
	return count, nil
}

func (r *memoryRepository) ResetSeasonCounters(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, progress := range r.progress {
		if progress.SeasonPoints != 0 {
			progress.SeasonPoints = 0
			count++
		}
	}
	return count, nil
}

func (r *memoryRepository) ensure(userID string) *UserProgress {
	progress, ok := r.progress[userID]
	if !ok {
		progress = defaultProgress(userID)
		r.progress[userID] = progress
	}
	return progress
}
