package leaderboard

import (
	"context"
	"testing"
)

func TestMemoryBoard_TopOrdersByPoints(t *testing.T) {
	board := NewMemoryBoard()
	ctx := context.Background()

	for _, seed := range []struct {
		user  string
		delta int
	}{
		{"alice", 20}, {"bob", 35}, {"carol", 5}, {"alice", 10},
	} {
		if err := board.Record(ctx, "2026-q1", seed.user, seed.delta); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	entries, err := board.Top(ctx, "2026-q1", 10)
	if err != nil {
		t.Fatalf("Top returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].UserID != "bob" || entries[0].Points != 35 || entries[0].Position != 1 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].UserID != "alice" || entries[1].Points != 30 {
		t.Fatalf("deltas must accumulate: %+v", entries[1])
	}
}

func TestMemoryBoard_TopHonorsLimit(t *testing.T) {
	board := NewMemoryBoard()
	ctx := context.Background()

	for _, user := range []string{"a", "b", "c", "d"} {
		if err := board.Record(ctx, "2026-q1", user, 1); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	entries, err := board.Top(ctx, "2026-q1", 2)
	if err != nil {
		t.Fatalf("Top returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit 2, got %d", len(entries))
	}
}

func TestMemoryBoard_PositionForUnknownUser(t *testing.T) {
	board := NewMemoryBoard()
	ctx := context.Background()

	entry, err := board.Position(ctx, "2026-q1", "ghost")
	if err != nil {
		t.Fatalf("Position returned error: %v", err)
	}
	if entry != nil {
		t.Fatalf("unknown user must have no position, got %+v", entry)
	}
}

func TestMemoryBoard_SeasonsAreIsolated(t *testing.T) {
	board := NewMemoryBoard()
	ctx := context.Background()

	if err := board.Record(ctx, "2026-q1", "alice", 50); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := board.Record(ctx, "2026-q2", "alice", 5); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	entry, err := board.Position(ctx, "2026-q2", "alice")
	if err != nil {
		t.Fatalf("Position returned error: %v", err)
	}
	if entry == nil || entry.Points != 5 {
		t.Fatalf("season keys must not bleed into each other: %+v", entry)
	}
}
