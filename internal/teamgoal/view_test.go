package teamgoal

import "testing"

func testMemberGoal() *MemberGoal {
	return &MemberGoal{
		ID:             "mg-1",
		GoalID:         "goal-1",
		MemberID:       "alice",
		MinimumTarget:  25,
		PersonalTarget: 40,
		CurrentValue:   10,
		Status:         MemberActive,
	}
}

func TestProjectMemberGoal_LeaderSeesRawNumbers(t *testing.T) {
	view := ProjectMemberGoal(testMemberGoal(), "leader", RoleLeader)
	if view.Detail == nil {
		t.Fatalf("leader must see raw numbers")
	}
	if view.Detail.PersonalTarget != 40 || view.Detail.CurrentValue != 10 {
		t.Fatalf("detail not populated: %+v", view.Detail)
	}
}

func TestProjectMemberGoal_CoLeaderSeesRawNumbers(t *testing.T) {
	if view := ProjectMemberGoal(testMemberGoal(), "colead", RoleCoLeader); view.Detail == nil {
		t.Fatalf("co-leader must see raw numbers")
	}
}

func TestProjectMemberGoal_OwnerSeesOwnNumbers(t *testing.T) {
	if view := ProjectMemberGoal(testMemberGoal(), "alice", RoleMember); view.Detail == nil {
		t.Fatalf("owner must see their own numbers")
	}
}

func TestProjectMemberGoal_PeerSeesPercentOnly(t *testing.T) {
	view := ProjectMemberGoal(testMemberGoal(), "bob", RoleMember)
	if view.Detail != nil {
		t.Fatalf("peer must not see raw numbers: %+v", view.Detail)
	}
	if view.ProgressPercent != 25 {
		t.Fatalf("expected 25%%, got %d", view.ProgressPercent)
	}
	if view.Status != MemberActive {
		t.Fatalf("status must stay visible, got %s", view.Status)
	}
}

func TestProgressPercent_CapsAtHundred(t *testing.T) {
	mg := testMemberGoal()
	mg.CurrentValue = 90
	if got := mg.ProgressPercent(); got != 100 {
		t.Fatalf("expected cap at 100, got %d", got)
	}

	mg.PersonalTarget = 0
	if got := mg.ProgressPercent(); got != 0 {
		t.Fatalf("zero target must report 0, got %d", got)
	}
}

func TestProjectGoal_AppliesFilterToEveryMember(t *testing.T) {
	goal := &TeamGoal{
		ID:               "goal-1",
		TeamID:           "team-1",
		Name:             "push",
		TargetValue:      100,
		MinimumPerMember: 50,
		CurrentValue:     130,
		Status:           GoalActive,
	}
	alice := testMemberGoal()
	bob := testMemberGoal()
	bob.ID = "mg-2"
	bob.MemberID = "bob"

	view := ProjectGoal(goal, []*MemberGoal{alice, bob}, "bob", RoleMember)
	if view.ProgressPercent != 100 {
		t.Fatalf("team percent must cap at 100, got %d", view.ProgressPercent)
	}
	if len(view.Members) != 2 {
		t.Fatalf("expected both members projected, got %d", len(view.Members))
	}
	for _, member := range view.Members {
		if member.MemberID == "alice" && member.Detail != nil {
			t.Fatalf("peer detail leaked through the goal view")
		}
		if member.MemberID == "bob" && member.Detail == nil {
			t.Fatalf("viewer's own detail missing from the goal view")
		}
	}
}
