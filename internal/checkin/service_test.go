package checkin

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(t *testing.T, now time.Time) (*Service, Repository) {
	t.Helper()
	repo := NewMemoryRepository()
	svc, err := NewService(repo, fixedClock{now: now}, time.UTC)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, repo
}

func TestServiceSaveMorning_CreatesRecord(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 15, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	record, err := svc.SaveMorning(context.Background(), "user-1", MorningInput{Victory: "closed the Smith deal", Focus: "follow up on quotes"})
	if err != nil {
		t.Fatalf("SaveMorning returned error: %v", err)
	}

	if record.State != StateMorningDone {
		t.Fatalf("expected state %s, got %s", StateMorningDone, record.State)
	}
	if !record.MorningDone() || record.EveningDone() {
		t.Fatalf("morning flags wrong: %+v", record)
	}
	if record.ID != DocID("user-1", now) {
		t.Fatalf("expected deterministic doc ID, got %s", record.ID)
	}
}

func TestServiceSaveEvening_AfterMorningCompletesDay(t *testing.T) {
	now := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	if _, err := svc.SaveMorning(ctx, "user-1", MorningInput{Focus: "calls"}); err != nil {
		t.Fatalf("SaveMorning returned error: %v", err)
	}
	record, err := svc.SaveEvening(ctx, "user-1", EveningInput{Accomplished: "3 demos", Sales: 2, Quotes: 5})
	if err != nil {
		t.Fatalf("SaveEvening returned error: %v", err)
	}

	if record.State != StateBothDone {
		t.Fatalf("expected state %s, got %s", StateBothDone, record.State)
	}
	if !record.Complete() {
		t.Fatalf("expected complete day")
	}
	if record.Sales != 2 || record.Quotes != 5 {
		t.Fatalf("evening numbers not stored: %+v", record)
	}
}

func TestServiceSaveEvening_FirstKeepsMorningPending(t *testing.T) {
	now := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)

	record, err := svc.SaveEvening(context.Background(), "user-1", EveningInput{Sales: 1})
	if err != nil {
		t.Fatalf("SaveEvening returned error: %v", err)
	}
	if record.State != StateEveningDone {
		t.Fatalf("expected state %s, got %s", StateEveningDone, record.State)
	}
	if record.Complete() {
		t.Fatalf("evening-only day must not count as complete")
	}
}

func TestServiceSaveMorning_RejectsEmptyFocus(t *testing.T) {
	svc, _ := newTestService(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))

	if _, err := svc.SaveMorning(context.Background(), "user-1", MorningInput{Focus: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestServiceSaveEvening_RejectsNegativeCounts(t *testing.T) {
	svc, _ := newTestService(t, time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC))

	if _, err := svc.SaveEvening(context.Background(), "user-1", EveningInput{Sales: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestServiceGetToday_NotFound(t *testing.T) {
	svc, _ := newTestService(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))

	if _, err := svc.GetToday(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceSaveMorning_SameDayOverwritesNotDuplicates(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, now)
	ctx := context.Background()

	if _, err := svc.SaveMorning(ctx, "user-1", MorningInput{Focus: "first"}); err != nil {
		t.Fatalf("first SaveMorning returned error: %v", err)
	}
	record, err := svc.SaveMorning(ctx, "user-1", MorningInput{Focus: "second"})
	if err != nil {
		t.Fatalf("second SaveMorning returned error: %v", err)
	}
	if record.Focus != "second" {
		t.Fatalf("expected latest focus, got %q", record.Focus)
	}

	history, err := svc.History(ctx, "user-1", 7)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one record for the day, got %d", len(history))
	}
}

func TestServiceHistory_DefaultWindowAndOrder(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()
	ctx := context.Background()

	// Two recent days plus one outside the default 30-day window.
	for _, daysAgo := range []int{0, 1, 40} {
		day := now.AddDate(0, 0, -daysAgo)
		if _, err := repo.ApplyMorning(ctx, "user-1", truncateToDay(day), MorningInput{Focus: "calls"}, day); err != nil {
			t.Fatalf("seed day -%d: %v", daysAgo, err)
		}
	}

	svc, err := NewService(repo, fixedClock{now: now}, time.UTC)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	history, err := svc.History(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 records inside the default window, got %d", len(history))
	}
	if !history[0].Date.Before(history[1].Date) {
		t.Fatalf("expected oldest-first ordering")
	}
}

func TestDocID(t *testing.T) {
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if got := DocID("user-1", day); got != "user-1_2026-03-04" {
		t.Fatalf("unexpected doc ID %q", got)
	}
}
