package teamgoal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service implements the team goal operations. Mutations return typed errors
// (ErrUnauthorized, ErrNotFound, ErrValidation) for the HTTP layer to map.
type Service struct {
	repo  Repository
	clock Clock
	ids   IDGenerator
}

// NewService creates a new team goal service.
func NewService(repo Repository, clock Clock, ids IDGenerator) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &Service{repo: repo, clock: clock, ids: ids}, nil
}

// CreateTeamGoal creates a shared goal with an equal ceiling-rounded split
// and one member goal per participant. Only the team leader or a co-leader
// may create goals.
func (s *Service) CreateTeamGoal(ctx context.Context, input CreateGoalInput, userID, teamID string) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}

	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return "", err
	}
	if !team.RoleOf(userID).CanManageGoals() {
		return "", fmt.Errorf("%w: only the leader or a co-leader can create goals", ErrUnauthorized)
	}
	if err := membersBelong(team, input.IncludedMembers); err != nil {
		return "", err
	}

	now := s.clock.Now().UTC()
	goal := &TeamGoal{
		ID:                 s.ids.NewID(),
		TeamID:             teamID,
		Name:               input.Name,
		TargetValue:        input.TargetValue,
		DistributionType:   input.DistributionType,
		IncludedMembers:    append([]string(nil), input.IncludedMembers...),
		LeaderParticipates: input.LeaderParticipates,
		Status:             GoalActive,
		CreatedBy:          userID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	participants := goal.Participants()
	goal.MinimumPerMember = MinimumPerMember(goal.TargetValue, len(participants))

	memberGoals := make([]*MemberGoal, 0, len(participants))
	for _, memberID := range participants {
		memberGoals = append(memberGoals, &MemberGoal{
			ID:             s.ids.NewID(),
			GoalID:         goal.ID,
			TeamID:         teamID,
			MemberID:       memberID,
			MinimumTarget:  goal.MinimumPerMember,
			PersonalTarget: goal.MinimumPerMember,
			Status:         MemberActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if err := s.repo.CreateGoal(ctx, goal, memberGoals); err != nil {
		return "", err
	}
	return goal.ID, nil
}

// UpdateMemberInclusion reshapes a goal's membership. The minimum is
// recomputed for the new participant count; still-included members are raised
// to at least the new minimum but never lowered; removed members are marked
// excluded so their history survives; new members get fresh slices.
func (s *Service) UpdateMemberInclusion(ctx context.Context, goalID string, includedMembers []string, leaderParticipates bool, userID string) (*TeamGoal, error) {
	goal, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	team, err := s.repo.GetTeam(ctx, goal.TeamID)
	if err != nil {
		return nil, err
	}
	if !team.RoleOf(userID).CanManageGoals() {
		return nil, fmt.Errorf("%w: only the leader or a co-leader can change inclusion", ErrUnauthorized)
	}
	if err := membersBelong(team, includedMembers); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	goal.IncludedMembers = append([]string(nil), includedMembers...)
	goal.LeaderParticipates = leaderParticipates
	goal.UpdatedAt = now

	participants := goal.Participants()
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: at least one participant is required", ErrValidation)
	}
	goal.MinimumPerMember = MinimumPerMember(goal.TargetValue, len(participants))

	included := make(map[string]bool, len(participants))
	for _, id := range participants {
		included[id] = true
	}

	existing, err := s.repo.ListMemberGoals(ctx, goalID)
	if err != nil {
		return nil, err
	}

	var upserts []*MemberGoal
	seen := make(map[string]bool, len(existing))
	for _, mg := range existing {
		seen[mg.MemberID] = true
		if included[mg.MemberID] {
			if mg.Status == MemberExcluded {
				mg.Status = MemberActive
			}
			mg.MinimumTarget = goal.MinimumPerMember
			if mg.PersonalTarget < goal.MinimumPerMember {
				mg.PersonalTarget = goal.MinimumPerMember
			}
		} else if mg.Status != MemberExcluded {
			mg.Status = MemberExcluded
		}
		mg.UpdatedAt = now
		upserts = append(upserts, mg)
	}

	for _, memberID := range participants {
		if seen[memberID] {
			continue
		}
		upserts = append(upserts, &MemberGoal{
			ID:             s.ids.NewID(),
			GoalID:         goal.ID,
			TeamID:         goal.TeamID,
			MemberID:       memberID,
			MinimumTarget:  goal.MinimumPerMember,
			PersonalTarget: goal.MinimumPerMember,
			Status:         MemberActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if err := s.repo.ApplyInclusion(ctx, goal, upserts); err != nil {
		return nil, err
	}
	return goal, nil
}

// UpdatePersonalTarget lets a member raise their own target. The target can
// never drop below the current minimum, and only the owner may change it.
func (s *Service) UpdatePersonalTarget(ctx context.Context, memberGoalID string, newTarget int, memberID string) (*MemberGoal, error) {
	mg, err := s.repo.GetMemberGoal(ctx, memberGoalID)
	if err != nil {
		return nil, err
	}
	if mg.MemberID != memberID {
		return nil, fmt.Errorf("%w: member goal belongs to another user", ErrUnauthorized)
	}
	if mg.Status == MemberExcluded {
		return nil, fmt.Errorf("%w: member is excluded from this goal", ErrValidation)
	}
	if newTarget < mg.MinimumTarget {
		return nil, fmt.Errorf("%w: personal target %d is below the minimum %d", ErrValidation, newTarget, mg.MinimumTarget)
	}

	now := s.clock.Now().UTC()
	if err := s.repo.SetPersonalTarget(ctx, memberGoalID, newTarget, now); err != nil {
		return nil, err
	}
	mg.PersonalTarget = newTarget
	mg.UpdatedAt = now
	return mg, nil
}

// RecordProgress appends an immutable progress record and bumps both the
// member's and the goal's running totals in one atomic step.
func (s *Service) RecordProgress(ctx context.Context, memberID, goalID string, value int, date time.Time) (*MemberGoal, *TeamGoal, error) {
	if value <= 0 {
		return nil, nil, fmt.Errorf("%w: progress value must be positive", ErrValidation)
	}

	mg, err := s.repo.GetMemberGoalByMember(ctx, goalID, memberID)
	if err != nil {
		return nil, nil, err
	}
	if mg.Status == MemberExcluded {
		return nil, nil, fmt.Errorf("%w: member is excluded from this goal", ErrValidation)
	}

	now := s.clock.Now().UTC()
	if date.IsZero() {
		date = now
	}

	record := &ProgressRecord{
		ID:           s.ids.NewID(),
		GoalID:       goalID,
		MemberGoalID: mg.ID,
		MemberID:     memberID,
		Value:        value,
		Date:         date,
		RecordedAt:   now,
	}
	return s.repo.RecordProgress(ctx, record)
}

// GetTeamGoals returns every goal of the team projected for the viewer's role.
func (s *Service) GetTeamGoals(ctx context.Context, teamID, viewerID string) ([]GoalView, error) {
	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	role := team.RoleOf(viewerID)
	if role == RoleNone {
		return nil, fmt.Errorf("%w: not a member of this team", ErrUnauthorized)
	}

	goals, err := s.repo.ListGoalsByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	views := make([]GoalView, 0, len(goals))
	for _, goal := range goals {
		memberGoals, err := s.repo.ListMemberGoals(ctx, goal.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, ProjectGoal(goal, memberGoals, viewerID, role))
	}
	return views, nil
}

// GetGoalProgress returns a single goal projected for the viewer's role.
func (s *Service) GetGoalProgress(ctx context.Context, goalID, viewerID string) (*GoalView, error) {
	goal, err := s.repo.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	team, err := s.repo.GetTeam(ctx, goal.TeamID)
	if err != nil {
		return nil, err
	}
	role := team.RoleOf(viewerID)
	if role == RoleNone {
		return nil, fmt.Errorf("%w: not a member of this team", ErrUnauthorized)
	}

	memberGoals, err := s.repo.ListMemberGoals(ctx, goalID)
	if err != nil {
		return nil, err
	}
	view := ProjectGoal(goal, memberGoals, viewerID, role)
	return &view, nil
}

func membersBelong(team *Team, memberIDs []string) error {
	for _, id := range memberIDs {
		if !team.Belongs(id) {
			return fmt.Errorf("%w: user %s is not on team %s", ErrValidation, id, team.ID)
		}
	}
	return nil
}
