package checkin

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	store map[string]*CheckIn // docID -> CheckIn
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{store: make(map[string]*CheckIn)}
}

func (r *memoryRepository) Get(_ context.Context, userID string, day time.Time) (*CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.store[DocID(userID, day)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *record
	clone.PointsAwarded = cloneFlags(record.PointsAwarded)
	return &clone, nil
}

func (r *memoryRepository) ApplyMorning(_ context.Context, userID string, day time.Time, input MorningInput, now time.Time) (*CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.ensure(userID, day, now)
	record.Victory = strings.TrimSpace(input.Victory)
	record.Focus = strings.TrimSpace(input.Focus)
	record.State = withMorning(record.State)
	record.UpdatedAt = now

	clone := *record
	clone.PointsAwarded = cloneFlags(record.PointsAwarded)
	return &clone, nil
}

func (r *memoryRepository) ApplyEvening(_ context.Context, userID string, day time.Time, input EveningInput, now time.Time) (*CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.ensure(userID, day, now)
	record.Accomplished = strings.TrimSpace(input.Accomplished)
	record.Stuck = strings.TrimSpace(input.Stuck)
	record.Sales = input.Sales
	record.Quotes = input.Quotes
	record.State = withEvening(record.State)
	record.UpdatedAt = now

	clone := *record
	clone.PointsAwarded = cloneFlags(record.PointsAwarded)
	return &clone, nil
}

func (r *memoryRepository) ListRange(_ context.Context, userID string, start, end time.Time) ([]*CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*CheckIn
	for _, record := range r.store {
		if record.UserID != userID {
			continue
		}
		if record.Date.Before(start) || !record.Date.Before(end) {
			continue
		}
		clone := *record
		clone.PointsAwarded = cloneFlags(record.PointsAwarded)
		records = append(records, &clone)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

func (r *memoryRepository) ensure(userID string, day, now time.Time) *CheckIn {
	id := DocID(userID, day)
	record, ok := r.store[id]
	if !ok {
		record = &CheckIn{
			ID:            id,
			UserID:        userID,
			Date:          day,
			State:         StateEmpty,
			PointsAwarded: make(map[string]bool),
			CreatedAt:     now,
		}
		r.store[id] = record
	}
	return record
}

func cloneFlags(flags map[string]bool) map[string]bool {
	out := make(map[string]bool, len(flags))
	for k, v := range flags {
		out[k] = v
	}
	return out
}
