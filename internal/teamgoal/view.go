package teamgoal

// MemberGoalDetail carries the raw numbers only privileged viewers receive.
type MemberGoalDetail struct {
	MinimumTarget  int `json:"minimum_target"`
	PersonalTarget int `json:"personal_target"`
	CurrentValue   int `json:"current_value"`
}

// MemberGoalView is the role-projected view of one member's slice. Detail is
// nil unless the viewer is a leader, co-leader, or the slice's owner; every
// other viewer gets the derived percentage and status only.
type MemberGoalView struct {
	MemberID        string            `json:"member_id"`
	ProgressPercent int               `json:"progress_percent"`
	Status          MemberStatus      `json:"status"`
	Detail          *MemberGoalDetail `json:"detail,omitempty"`
}

// GoalView is the role-projected view of a team goal.
type GoalView struct {
	ID               string           `json:"id"`
	TeamID           string           `json:"team_id"`
	Name             string           `json:"name"`
	TargetValue      int              `json:"target_value"`
	MinimumPerMember int              `json:"minimum_per_member"`
	CurrentValue     int              `json:"current_value"`
	ProgressPercent  int              `json:"progress_percent"`
	Status           GoalStatus       `json:"status"`
	Members          []MemberGoalView `json:"members"`
}

// ProjectMemberGoal builds the view a given viewer is allowed to see. It is a
// pure function of the record, the viewer, and the viewer's role.
func ProjectMemberGoal(mg *MemberGoal, viewerID string, role Role) MemberGoalView {
	view := MemberGoalView{
		MemberID:        mg.MemberID,
		ProgressPercent: mg.ProgressPercent(),
		Status:          mg.Status,
	}
	if role.SeesRawNumbers() || mg.MemberID == viewerID {
		view.Detail = &MemberGoalDetail{
			MinimumTarget:  mg.MinimumTarget,
			PersonalTarget: mg.PersonalTarget,
			CurrentValue:   mg.CurrentValue,
		}
	}
	return view
}

// ProjectGoal builds the goal view for a viewer, projecting every member
// slice through the same privacy filter.
func ProjectGoal(goal *TeamGoal, memberGoals []*MemberGoal, viewerID string, role Role) GoalView {
	view := GoalView{
		ID:               goal.ID,
		TeamID:           goal.TeamID,
		Name:             goal.Name,
		TargetValue:      goal.TargetValue,
		MinimumPerMember: goal.MinimumPerMember,
		CurrentValue:     goal.CurrentValue,
		Status:           goal.Status,
	}
	if goal.TargetValue > 0 {
		percent := (goal.CurrentValue * 100) / goal.TargetValue
		if percent > 100 {
			percent = 100
		}
		view.ProgressPercent = percent
	}
	for _, mg := range memberGoals {
		view.Members = append(view.Members, ProjectMemberGoal(mg, viewerID, role))
	}
	return view
}
