package gamification

import (
	"context"
	"errors"
	"time"
)

// ActivityType identifies which daily activity triggered a point award.
type ActivityType string

const (
	ActivityMorningIntentions ActivityType = "morning_intentions"
	ActivityEveningWrap       ActivityType = "evening_wrap"
)

// Valid reports whether the activity type is one of the enumerated values.
func (a ActivityType) Valid() bool {
	return a == ActivityMorningIntentions || a == ActivityEveningWrap
}

// other returns the complementary daily activity.
func (a ActivityType) other() ActivityType {
	if a == ActivityMorningIntentions {
		return ActivityEveningWrap
	}
	return ActivityMorningIntentions
}

// AwardKeyDailyBonus is the idempotency flag for the both-activities bonus.
const AwardKeyDailyBonus = "daily_bonus"

// Point values. Keep these stable; lifetime totals are never recomputed.
const (
	ActivityPoints   = 5
	DailyBonusPoints = 10
)

// UserProgress is the per-user aggregate maintained by the points engine and
// the streak calculator. LifetimePoints only ever grows; TodayPoints is
// cleared by the daily rollover and SeasonPoints at the season boundary.
type UserProgress struct {
	UserID           string    `json:"user_id" firestore:"user_id"`
	TodayPoints      int       `json:"today_points" firestore:"today_points"`
	SeasonPoints     int       `json:"season_points" firestore:"season_points"`
	LifetimePoints   int       `json:"lifetime_points" firestore:"lifetime_points"`
	XP               int       `json:"xp" firestore:"xp"`
	Streak           int       `json:"streak" firestore:"streak"`
	SalesDayCount    int       `json:"sales_day_count" firestore:"sales_day_count"`
	Achievements     []string  `json:"achievements" firestore:"achievements"`
	LastActivityDate string    `json:"last_activity_date,omitempty" firestore:"last_activity_date"`
	UpdatedAt        time.Time `json:"updated_at" firestore:"updated_at"`
}

// HasAchievement reports whether the achievement was already unlocked.
func (p *UserProgress) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// AwardResult reports what a single award attempt granted.
type AwardResult struct {
	Activity     ActivityType `json:"activity"`
	Awarded      bool         `json:"awarded"`
	Points       int          `json:"points"`
	BonusAwarded bool         `json:"bonus_awarded"`
	BonusPoints  int          `json:"bonus_points"`
}

// Total returns the combined point delta applied to the user's counters.
func (r AwardResult) Total() int {
	return r.Points + r.BonusPoints
}

// StreakResult reports the outcome of a streak recalculation. A store failure
// is returned as an error, never as a zero streak.
type StreakResult struct {
	Streak          int      `json:"streak"`
	Changed         bool     `json:"changed"`
	NewAchievements []string `json:"new_achievements,omitempty"`
}

// Repository defines the interface for progress data access.
type Repository interface {
	// GetProgress returns the user's aggregate, or a zero-valued baseline
	// when no document exists yet.
	GetProgress(ctx context.Context, userID string) (*UserProgress, error)
	// AwardActivity atomically checks the day's award flag, sets it, and
	// applies the point deltas. Awarding the same activity twice on one day
	// yields a zero-delta result.
	AwardActivity(ctx context.Context, userID string, day time.Time, activity ActivityType) (AwardResult, error)
	// SetStreak persists the computed streak and appends any newly unlocked
	// achievements.
	SetStreak(ctx context.Context, userID string, streak int, newAchievements []string, now time.Time) error
	// ResetDailyCounters clears today_points for every user, returning the
	// number of records touched.
	ResetDailyCounters(ctx context.Context) (int, error)
	// ResetSeasonCounters clears season_points for every user.
	ResetSeasonCounters(ctx context.Context) (int, error)
}

// ErrUnknownActivity indicates an activity type outside the enumerated set.
var ErrUnknownActivity = errors.New("unknown activity type")

// ErrCheckInMissing indicates points were requested before the day's
// check-in document was saved.
var ErrCheckInMissing = errors.New("no check-in recorded for today")
