package teamgoal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu          sync.RWMutex
	teams       map[string]*Team
	goals       map[string]*TeamGoal
	memberGoals map[string]*MemberGoal
	records     map[string]*ProgressRecord
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		teams:       make(map[string]*Team),
		goals:       make(map[string]*TeamGoal),
		memberGoals: make(map[string]*MemberGoal),
		records:     make(map[string]*ProgressRecord),
	}
}

func (r *memoryRepository) GetTeam(_ context.Context, teamID string) (*Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	team, ok := r.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}
	clone := *team
	clone.CoLeaderIDs = append([]string(nil), team.CoLeaderIDs...)
	clone.MemberIDs = append([]string(nil), team.MemberIDs...)
	return &clone, nil
}

func (r *memoryRepository) UpsertTeam(_ context.Context, team *Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *team
	r.teams[team.ID] = &clone
	return nil
}

func (r *memoryRepository) CreateGoal(_ context.Context, goal *TeamGoal, memberGoals []*MemberGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.goals[goal.ID]; exists {
		return fmt.Errorf("goal %s already exists", goal.ID)
	}
	r.goals[goal.ID] = cloneGoal(goal)
	for _, mg := range memberGoals {
		clone := *mg
		r.memberGoals[mg.ID] = &clone
	}
	return nil
}

func (r *memoryRepository) GetGoal(_ context.Context, goalID string) (*TeamGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goal, ok := r.goals[goalID]
	if !ok {
		return nil, fmt.Errorf("%w: goal %s", ErrNotFound, goalID)
	}
	return cloneGoal(goal), nil
}

func (r *memoryRepository) ListGoalsByTeam(_ context.Context, teamID string) ([]*TeamGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var goals []*TeamGoal
	for _, goal := range r.goals {
		if goal.TeamID == teamID {
			goals = append(goals, cloneGoal(goal))
		}
	}
	sort.Slice(goals, func(i, j int) bool {
		return goals[i].CreatedAt.After(goals[j].CreatedAt)
	})
	return goals, nil
}

func (r *memoryRepository) GetMemberGoal(_ context.Context, memberGoalID string) (*MemberGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mg, ok := r.memberGoals[memberGoalID]
	if !ok {
		return nil, fmt.Errorf("%w: member goal %s", ErrNotFound, memberGoalID)
	}
	clone := *mg
	return &clone, nil
}

func (r *memoryRepository) GetMemberGoalByMember(_ context.Context, goalID, memberID string) (*MemberGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, mg := range r.memberGoals {
		if mg.GoalID == goalID && mg.MemberID == memberID {
			clone := *mg
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: member goal for %s on goal %s", ErrNotFound, memberID, goalID)
}

func (r *memoryRepository) ListMemberGoals(_ context.Context, goalID string) ([]*MemberGoal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var memberGoals []*MemberGoal
	for _, mg := range r.memberGoals {
		if mg.GoalID == goalID {
			clone := *mg
			memberGoals = append(memberGoals, &clone)
		}
	}
	sort.Slice(memberGoals, func(i, j int) bool {
		return memberGoals[i].MemberID < memberGoals[j].MemberID
	})
	return memberGoals, nil
}

func (r *memoryRepository) ApplyInclusion(_ context.Context, goal *TeamGoal, memberGoals []*MemberGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.goals[goal.ID] = cloneGoal(goal)
	for _, mg := range memberGoals {
		clone := *mg
		r.memberGoals[mg.ID] = &clone
	}
	return nil
}

func (r *memoryRepository) SetPersonalTarget(_ context.Context, memberGoalID string, target int, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mg, ok := r.memberGoals[memberGoalID]
	if !ok {
		return fmt.Errorf("%w: member goal %s", ErrNotFound, memberGoalID)
	}
	mg.PersonalTarget = target
	mg.UpdatedAt = now
	return nil
}

func (r *memoryRepository) RecordProgress(_ context.Context, record *ProgressRecord) (*MemberGoal, *TeamGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mg, ok := r.memberGoals[record.MemberGoalID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: member goal %s", ErrNotFound, record.MemberGoalID)
	}
	goal, ok := r.goals[record.GoalID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: goal %s", ErrNotFound, record.GoalID)
	}

	recordClone := *record
	r.records[record.ID] = &recordClone

	mg.CurrentValue += record.Value
	mg.UpdatedAt = record.RecordedAt
	if mg.Status == MemberActive && mg.CurrentValue >= mg.PersonalTarget {
		mg.Status = MemberCompleted
	}

	goal.CurrentValue += record.Value
	goal.UpdatedAt = record.RecordedAt

	mgClone := *mg
	return &mgClone, cloneGoal(goal), nil
}

func cloneGoal(goal *TeamGoal) *TeamGoal {
	clone := *goal
	clone.IncludedMembers = append([]string(nil), goal.IncludedMembers...)
	return &clone
}
