package teamgoal

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	teamsCollection       = "teams"
	goalsCollection       = "team_goals"
	memberGoalsCollection = "member_goals"
	progressCollection    = "goal_progress"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	doc, err := r.client.Collection(teamsCollection).Doc(teamID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}
	if err != nil {
		return nil, err
	}

	var team Team
	if err := doc.DataTo(&team); err != nil {
		return nil, fmt.Errorf("unmarshal team: %w", err)
	}
	team.ID = doc.Ref.ID
	return &team, nil
}

func (r *firestoreRepository) UpsertTeam(ctx context.Context, team *Team) error {
	_, err := r.client.Collection(teamsCollection).Doc(team.ID).Set(ctx, team)
	return err
}

func (r *firestoreRepository) CreateGoal(ctx context.Context, goal *TeamGoal, memberGoals []*MemberGoal) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		goalRef := r.client.Collection(goalsCollection).Doc(goal.ID)
		if err := tx.Create(goalRef, goal); err != nil {
			return err
		}
		for _, mg := range memberGoals {
			mgRef := r.client.Collection(memberGoalsCollection).Doc(mg.ID)
			if err := tx.Create(mgRef, mg); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *firestoreRepository) GetGoal(ctx context.Context, goalID string) (*TeamGoal, error) {
	doc, err := r.client.Collection(goalsCollection).Doc(goalID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: goal %s", ErrNotFound, goalID)
	}
	if err != nil {
		return nil, err
	}

	var goal TeamGoal
	if err := doc.DataTo(&goal); err != nil {
		return nil, fmt.Errorf("unmarshal goal: %w", err)
	}
	goal.ID = doc.Ref.ID
	return &goal, nil
}

func (r *firestoreRepository) ListGoalsByTeam(ctx context.Context, teamID string) ([]*TeamGoal, error) {
	iter := r.client.Collection(goalsCollection).
		Where("team_id", "==", teamID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var goals []*TeamGoal
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var goal TeamGoal
		if err := doc.DataTo(&goal); err != nil {
			return nil, fmt.Errorf("unmarshal goal: %w", err)
		}
		goal.ID = doc.Ref.ID
		goals = append(goals, &goal)
	}
	return goals, nil
}

func (r *firestoreRepository) GetMemberGoal(ctx context.Context, memberGoalID string) (*MemberGoal, error) {
	doc, err := r.client.Collection(memberGoalsCollection).Doc(memberGoalID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: member goal %s", ErrNotFound, memberGoalID)
	}
	if err != nil {
		return nil, err
	}
	return decodeMemberGoal(doc)
}

func (r *firestoreRepository) GetMemberGoalByMember(ctx context.Context, goalID, memberID string) (*MemberGoal, error) {
	iter := r.client.Collection(memberGoalsCollection).
		Where("goal_id", "==", goalID).
		Where("member_id", "==", memberID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("%w: member goal for %s on goal %s", ErrNotFound, memberID, goalID)
	}
	if err != nil {
		return nil, err
	}
	return decodeMemberGoal(doc)
}

func (r *firestoreRepository) ListMemberGoals(ctx context.Context, goalID string) ([]*MemberGoal, error) {
	iter := r.client.Collection(memberGoalsCollection).
		Where("goal_id", "==", goalID).
		Documents(ctx)
	defer iter.Stop()

	var memberGoals []*MemberGoal
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		mg, err := decodeMemberGoal(doc)
		if err != nil {
			return nil, err
		}
		memberGoals = append(memberGoals, mg)
	}
	return memberGoals, nil
}

func (r *firestoreRepository) ApplyInclusion(ctx context.Context, goal *TeamGoal, memberGoals []*MemberGoal) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		goalRef := r.client.Collection(goalsCollection).Doc(goal.ID)
		if err := tx.Set(goalRef, goal); err != nil {
			return err
		}
		for _, mg := range memberGoals {
			mgRef := r.client.Collection(memberGoalsCollection).Doc(mg.ID)
			if err := tx.Set(mgRef, mg); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *firestoreRepository) SetPersonalTarget(ctx context.Context, memberGoalID string, target int, now time.Time) error {
	_, err := r.client.Collection(memberGoalsCollection).Doc(memberGoalID).Update(ctx, []firestore.Update{
		{Path: "personal_target", Value: target},
		{Path: "updated_at", Value: now},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: member goal %s", ErrNotFound, memberGoalID)
	}
	return err
}

// RecordProgress performs the append and both counter bumps inside a single
// transaction so the member and team totals can never drift apart.
func (r *firestoreRepository) RecordProgress(ctx context.Context, record *ProgressRecord) (*MemberGoal, *TeamGoal, error) {
	var (
		updatedMember MemberGoal
		updatedGoal   TeamGoal
	)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		mgRef := r.client.Collection(memberGoalsCollection).Doc(record.MemberGoalID)
		goalRef := r.client.Collection(goalsCollection).Doc(record.GoalID)

		mgDoc, err := tx.Get(mgRef)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: member goal %s", ErrNotFound, record.MemberGoalID)
		}
		if err != nil {
			return err
		}
		if err := mgDoc.DataTo(&updatedMember); err != nil {
			return fmt.Errorf("unmarshal member goal: %w", err)
		}
		updatedMember.ID = mgDoc.Ref.ID

		goalDoc, err := tx.Get(goalRef)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: goal %s", ErrNotFound, record.GoalID)
		}
		if err != nil {
			return err
		}
		if err := goalDoc.DataTo(&updatedGoal); err != nil {
			return fmt.Errorf("unmarshal goal: %w", err)
		}
		updatedGoal.ID = goalDoc.Ref.ID

		updatedMember.CurrentValue += record.Value
		updatedMember.UpdatedAt = record.RecordedAt
		if updatedMember.Status == MemberActive && updatedMember.CurrentValue >= updatedMember.PersonalTarget {
			updatedMember.Status = MemberCompleted
		}

		updatedGoal.CurrentValue += record.Value
		updatedGoal.UpdatedAt = record.RecordedAt

		recordRef := r.client.Collection(progressCollection).Doc(record.ID)
		if err := tx.Create(recordRef, record); err != nil {
			return err
		}
		if err := tx.Set(mgRef, &updatedMember); err != nil {
			return err
		}
		return tx.Set(goalRef, &updatedGoal)
	})
	if err != nil {
		return nil, nil, err
	}
	return &updatedMember, &updatedGoal, nil
}

func decodeMemberGoal(doc *firestore.DocumentSnapshot) (*MemberGoal, error) {
	var mg MemberGoal
	if err := doc.DataTo(&mg); err != nil {
		return nil, fmt.Errorf("unmarshal member goal: %w", err)
	}
	mg.ID = doc.Ref.ID
	return &mg, nil
}
