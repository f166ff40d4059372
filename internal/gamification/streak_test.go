package gamification

import (
	"context"
	"testing"
	"time"
)

func TestStreak_CountsConsecutiveBusinessDays(t *testing.T) {
	h := newHarness(t, testNow, nil)
	ctx := context.Background()
	today := h.calendar.Today(testNow)

	// Monday, Tuesday, Wednesday all complete.
	h.completeDay(t, "user-1", today.AddDate(0, 0, -2))
	h.completeDay(t, "user-1", today.AddDate(0, 0, -1))
	h.completeDay(t, "user-1", today)

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != 3 {
		t.Fatalf("expected streak 3, got %d", result.Streak)
	}
	if !result.Changed {
		t.Fatalf("expected the new streak to be persisted")
	}
}

func TestStreak_GapBreaksTheWalk(t *testing.T) {
	h := newHarness(t, testNow, nil)
	ctx := context.Background()
	today := h.calendar.Today(testNow)

	// Monday complete, Tuesday missing, Wednesday complete.
	h.completeDay(t, "user-1", today.AddDate(0, 0, -2))
	h.completeDay(t, "user-1", today)

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != 1 {
		t.Fatalf("expected streak 1 after a gap, got %d", result.Streak)
	}
}

func TestStreak_PartialDayBreaksTheWalk(t *testing.T) {
	h := newHarness(t, testNow, nil)
	ctx := context.Background()
	today := h.calendar.Today(testNow)

	// Yesterday only has the morning activity; it must not count.
	h.morningOnly(t, "user-1", today.AddDate(0, 0, -1))
	h.completeDay(t, "user-1", today)

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != 1 {
		t.Fatalf("expected streak 1 across a partial day, got %d", result.Streak)
	}
}

func TestStreak_WeekendDoesNotBreak(t *testing.T) {
	// Monday after a fully-skipped weekend.
	monday := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, monday, nil)
	ctx := context.Background()
	today := h.calendar.Today(monday)

	h.completeDay(t, "user-1", today.AddDate(0, 0, -3)) // Friday
	h.completeDay(t, "user-1", today)

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != 2 {
		t.Fatalf("Friday+Monday should count as 2, got %d", result.Streak)
	}
}

func TestStreak_HolidayDoesNotBreak(t *testing.T) {
	h := newHarness(t, testNow, []string{"2026-03-03"}) // Tuesday is a holiday
	ctx := context.Background()
	today := h.calendar.Today(testNow)

	h.completeDay(t, "user-1", today.AddDate(0, 0, -2)) // Monday
	h.completeDay(t, "user-1", today)                   // Wednesday

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != 2 {
		t.Fatalf("streak should skip the holiday, got %d", result.Streak)
	}
}

func TestStreak_NonBusinessDayReturnsStoredValue(t *testing.T) {
	saturday := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, saturday, nil)
	ctx := context.Background()

	if err := h.repo.SetStreak(ctx, "user-1", 4, nil, saturday); err != nil {
		t.Fatalf("SetStreak returned error: %v", err)
	}

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != 4 || result.Changed {
		t.Fatalf("weekend recalculation must be a no-op, got %+v", result)
	}
}

func TestStreak_SurvivesWhileTodayIsPending(t *testing.T) {
	h := newHarness(t, testNow, nil)
	ctx := context.Background()
	today := h.calendar.Today(testNow)

	// Yesterday earned a streak of 1; this morning only half the day is done.
	h.completeDay(t, "user-1", today.AddDate(0, 0, -1))
	h.morningOnly(t, "user-1", today)
	if _, err := h.svc.AwardDailyActivityPoints(ctx, "user-1", ActivityMorningIntentions); err != nil {
		t.Fatalf("award returned error: %v", err)
	}
	if err := h.repo.SetStreak(ctx, "user-1", 1, nil, testNow); err != nil {
		t.Fatalf("SetStreak returned error: %v", err)
	}

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != 1 || result.Changed {
		t.Fatalf("pending day must not reset the streak, got %+v", result)
	}
}

func TestStreak_StaleLastActivityResetsToZero(t *testing.T) {
	h := newHarness(t, testNow, nil)
	ctx := context.Background()
	today := h.calendar.Today(testNow)

	// Last complete day was a week ago; nothing today.
	staleDay := today.AddDate(0, 0, -7)
	h.completeDay(t, "user-1", staleDay)
	if _, err := h.repo.AwardActivity(ctx, "user-1", staleDay, ActivityMorningIntentions); err != nil {
		t.Fatalf("seed award returned error: %v", err)
	}
	if err := h.repo.SetStreak(ctx, "user-1", 5, nil, staleDay); err != nil {
		t.Fatalf("SetStreak returned error: %v", err)
	}

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != 0 || !result.Changed {
		t.Fatalf("stale activity must reset the streak, got %+v", result)
	}

	progress, err := h.repo.GetProgress(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetProgress returned error: %v", err)
	}
	if progress.Streak != 0 {
		t.Fatalf("reset streak not persisted: %+v", progress)
	}
}

func TestStreak_ZeroStreakResetIsNotRewritten(t *testing.T) {
	h := newHarness(t, testNow, nil)

	result, err := h.svc.CalculateStreakForToday(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != 0 || result.Changed {
		t.Fatalf("fresh user recalculation must be a no-op, got %+v", result)
	}
}

func TestStreak_CapsAtOneYear(t *testing.T) {
	h := newHarness(t, testNow, nil)
	ctx := context.Background()

	day := h.calendar.Today(testNow)
	h.completeDay(t, "user-1", day)
	for i := 0; i < maxStreakDays+20; i++ {
		day = h.calendar.PreviousBusinessDay(day)
		h.completeDay(t, "user-1", day)
	}

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if result.Streak != maxStreakDays {
		t.Fatalf("expected cap at %d, got %d", maxStreakDays, result.Streak)
	}
}

func TestStreak_UnlocksMilestoneAchievements(t *testing.T) {
	h := newHarness(t, testNow, nil)
	ctx := context.Background()
	today := h.calendar.Today(testNow)

	h.completeDay(t, "user-1", today.AddDate(0, 0, -2))
	h.completeDay(t, "user-1", today.AddDate(0, 0, -1))
	h.completeDay(t, "user-1", today)

	result, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("CalculateStreakForToday returned error: %v", err)
	}
	if len(result.NewAchievements) != 1 || result.NewAchievements[0] != "streak_3" {
		t.Fatalf("expected streak_3 unlock, got %v", result.NewAchievements)
	}

	// A second recalculation must not unlock it again.
	again, err := h.svc.CalculateStreakForToday(ctx, "user-1")
	if err != nil {
		t.Fatalf("second recalculation returned error: %v", err)
	}
	if len(again.NewAchievements) != 0 {
		t.Fatalf("achievement unlocked twice: %v", again.NewAchievements)
	}
}

func TestNewlyUnlocked_SalesDayMilestones(t *testing.T) {
	progress := &UserProgress{SalesDayCount: 5, Achievements: []string{"streak_3"}}
	got := newlyUnlocked(progress, 3)
	if len(got) != 1 || got[0] != "sales_days_5" {
		t.Fatalf("expected sales_days_5 only, got %v", got)
	}
}

func TestGetProgress_DerivesRankAndTodayState(t *testing.T) {
	h := newHarness(t, testNow, nil)
	ctx := context.Background()
	today := h.calendar.Today(testNow)
	h.morningOnly(t, "user-1", today)

	summary, err := h.svc.GetProgress(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetProgress returned error: %v", err)
	}
	if summary.Rank.ID != "bronze" {
		t.Fatalf("fresh user should be bronze, got %s", summary.Rank.ID)
	}
	if summary.NextRank == nil || summary.NextRank.ID != "silver" {
		t.Fatalf("expected silver next, got %+v", summary.NextRank)
	}
	if summary.Season.ID != "2026-q1" {
		t.Fatalf("unexpected season %s", summary.Season.ID)
	}
	if summary.TodayState != "morning_done" {
		t.Fatalf("expected today's state to be surfaced, got %s", summary.TodayState)
	}
}
