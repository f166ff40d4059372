package teamgoal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is a viewer's relationship to a team.
type Role string

const (
	RoleLeader   Role = "leader"
	RoleCoLeader Role = "co_leader"
	RoleMember   Role = "member"
	RoleNone     Role = "none"
)

// CanManageGoals reports whether the role may create or reshape team goals.
func (r Role) CanManageGoals() bool {
	return r == RoleLeader || r == RoleCoLeader
}

// SeesRawNumbers reports whether the role may see every member's raw targets
// and progress values.
func (r Role) SeesRawNumbers() bool {
	return r == RoleLeader || r == RoleCoLeader
}

// Team is the membership document goals are authorized against.
type Team struct {
	ID          string    `json:"id" firestore:"id"`
	Name        string    `json:"name" firestore:"name"`
	LeaderID    string    `json:"leader_id" firestore:"leader_id"`
	CoLeaderIDs []string  `json:"co_leader_ids" firestore:"co_leader_ids"`
	MemberIDs   []string  `json:"member_ids" firestore:"member_ids"`
	CreatedAt   time.Time `json:"created_at" firestore:"created_at"`
}

// RoleOf returns the user's role on the team.
func (t *Team) RoleOf(userID string) Role {
	if userID == t.LeaderID {
		return RoleLeader
	}
	for _, id := range t.CoLeaderIDs {
		if id == userID {
			return RoleCoLeader
		}
	}
	for _, id := range t.MemberIDs {
		if id == userID {
			return RoleMember
		}
	}
	return RoleNone
}

// Belongs reports whether the user appears anywhere on the team.
func (t *Team) Belongs(userID string) bool {
	return t.RoleOf(userID) != RoleNone
}

// GoalStatus is the lifecycle state of a shared team goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalPaused    GoalStatus = "paused"
	GoalCompleted GoalStatus = "completed"
)

// MemberStatus is the lifecycle state of a member's slice of a goal.
// Transitions are one-way: active→completed and active→excluded.
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberCompleted MemberStatus = "completed"
	MemberExcluded  MemberStatus = "excluded"
)

// DistributionType describes how the team target splits across members.
type DistributionType string

const (
	DistributionEqual  DistributionType = "equal"
	DistributionCustom DistributionType = "custom"
)

// TeamGoal is a shared numeric target split into per-member minimums.
type TeamGoal struct {
	ID                 string           `json:"id" firestore:"id"`
	TeamID             string           `json:"team_id" firestore:"team_id"`
	Name               string           `json:"name" firestore:"name"`
	TargetValue        int              `json:"target_value" firestore:"target_value"`
	DistributionType   DistributionType `json:"distribution_type" firestore:"distribution_type"`
	IncludedMembers    []string         `json:"included_members" firestore:"included_members"`
	LeaderParticipates bool             `json:"leader_participates" firestore:"leader_participates"`
	MinimumPerMember   int              `json:"minimum_per_member" firestore:"minimum_per_member"`
	CurrentValue       int              `json:"current_value" firestore:"current_value"`
	Status             GoalStatus       `json:"status" firestore:"status"`
	CreatedBy          string           `json:"created_by" firestore:"created_by"`
	CreatedAt          time.Time        `json:"created_at" firestore:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" firestore:"updated_at"`
}

// Participants returns every user who carries a slice of the goal: the
// included members plus the creating leader when they opted in.
func (g *TeamGoal) Participants() []string {
	if !g.LeaderParticipates {
		return g.IncludedMembers
	}
	out := make([]string, 0, len(g.IncludedMembers)+1)
	out = append(out, g.IncludedMembers...)
	out = append(out, g.CreatedBy)
	return out
}

// MemberGoal is one member's slice of a team goal. PersonalTarget never drops
// below MinimumTarget.
type MemberGoal struct {
	ID             string       `json:"id" firestore:"id"`
	GoalID         string       `json:"goal_id" firestore:"goal_id"`
	TeamID         string       `json:"team_id" firestore:"team_id"`
	MemberID       string       `json:"member_id" firestore:"member_id"`
	MinimumTarget  int          `json:"minimum_target" firestore:"minimum_target"`
	PersonalTarget int          `json:"personal_target" firestore:"personal_target"`
	CurrentValue   int          `json:"current_value" firestore:"current_value"`
	Status         MemberStatus `json:"status" firestore:"status"`
	CreatedAt      time.Time    `json:"created_at" firestore:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" firestore:"updated_at"`
}

// ProgressPercent returns completion against the personal target, capped at 100.
func (m *MemberGoal) ProgressPercent() int {
	if m.PersonalTarget <= 0 {
		return 0
	}
	percent := (m.CurrentValue * 100) / m.PersonalTarget
	if percent > 100 {
		percent = 100
	}
	return percent
}

// ProgressRecord is an immutable log entry behind the running counters.
type ProgressRecord struct {
	ID           string    `json:"id" firestore:"id"`
	GoalID       string    `json:"goal_id" firestore:"goal_id"`
	MemberGoalID string    `json:"member_goal_id" firestore:"member_goal_id"`
	MemberID     string    `json:"member_id" firestore:"member_id"`
	Value        int       `json:"value" firestore:"value"`
	Date         time.Time `json:"date" firestore:"date"`
	RecordedAt   time.Time `json:"recorded_at" firestore:"recorded_at"`
}

// CreateGoalInput captures the data required to create a team goal.
type CreateGoalInput struct {
	Name               string           `json:"name"`
	TargetValue        int              `json:"target_value"`
	DistributionType   DistributionType `json:"distribution_type"`
	IncludedMembers    []string         `json:"included_members"`
	LeaderParticipates bool             `json:"leader_participates"`
}

// Validate ensures the input fields meet the domain constraints.
func (i CreateGoalInput) Validate() error {
	var problems []string
	if strings.TrimSpace(i.Name) == "" {
		problems = append(problems, "name is required")
	}
	if i.TargetValue <= 0 {
		problems = append(problems, "target value must be positive")
	}
	switch i.DistributionType {
	case DistributionEqual, DistributionCustom:
	case "":
		problems = append(problems, "distribution type is required")
	default:
		problems = append(problems, fmt.Sprintf("unknown distribution type %q", i.DistributionType))
	}
	if len(i.IncludedMembers) == 0 && !i.LeaderParticipates {
		problems = append(problems, "at least one participant is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// MinimumPerMember is the ceiling-rounded equal split of the target.
func MinimumPerMember(target, participants int) int {
	if participants <= 0 {
		return 0
	}
	return (target + participants - 1) / participants
}

// Repository defines the interface for team goal data access.
type Repository interface {
	GetTeam(ctx context.Context, teamID string) (*Team, error)
	UpsertTeam(ctx context.Context, team *Team) error

	// CreateGoal writes the goal and its member goals all-or-nothing.
	CreateGoal(ctx context.Context, goal *TeamGoal, memberGoals []*MemberGoal) error
	GetGoal(ctx context.Context, goalID string) (*TeamGoal, error)
	ListGoalsByTeam(ctx context.Context, teamID string) ([]*TeamGoal, error)

	GetMemberGoal(ctx context.Context, memberGoalID string) (*MemberGoal, error)
	GetMemberGoalByMember(ctx context.Context, goalID, memberID string) (*MemberGoal, error)
	ListMemberGoals(ctx context.Context, goalID string) ([]*MemberGoal, error)

	// ApplyInclusion persists a recomputed goal and its reshaped member
	// goals all-or-nothing.
	ApplyInclusion(ctx context.Context, goal *TeamGoal, memberGoals []*MemberGoal) error
	SetPersonalTarget(ctx context.Context, memberGoalID string, target int, now time.Time) error

	// RecordProgress appends the record and bumps the member and team
	// counters in one atomic step, flipping the member goal to completed
	// when the personal target is reached.
	RecordProgress(ctx context.Context, record *ProgressRecord) (*MemberGoal, *TeamGoal, error)
}

// ErrNotFound indicates the referenced team, goal, or member goal is absent.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized indicates the caller lacks the required team role.
var ErrUnauthorized = errors.New("unauthorized")

// ErrValidation indicates a malformed or out-of-bounds input.
var ErrValidation = errors.New("validation failed")
