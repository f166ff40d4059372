package leaderboard

import (
	"context"
	"sort"
	"sync"
)

type memoryBoard struct {
	mu     sync.RWMutex
	scores map[string]map[string]int // seasonID -> userID -> points
}

// NewMemoryBoard returns an in-memory board intended for local development and tests.
func NewMemoryBoard() Board {
	return &memoryBoard{scores: make(map[string]map[string]int)}
}

func (b *memoryBoard) Record(_ context.Context, seasonID, userID string, delta int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	season, ok := b.scores[seasonID]
	if !ok {
		season = make(map[string]int)
		b.scores[seasonID] = season
	}
	season[userID] += delta
	return nil
}

func (b *memoryBoard) Top(_ context.Context, seasonID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	entries := b.ranked(seasonID)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (b *memoryBoard) Position(_ context.Context, seasonID, userID string) (*Entry, error) {
	for _, entry := range b.ranked(seasonID) {
		if entry.UserID == userID {
			e := entry
			return &e, nil
		}
	}
	return nil, nil
}

func (b *memoryBoard) ranked(seasonID string) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var entries []Entry
	for userID, points := range b.scores[seasonID] {
		entries = append(entries, Entry{UserID: userID, Points: points})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}
