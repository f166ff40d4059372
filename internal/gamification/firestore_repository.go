package gamification

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/salesquest/gamification-service/internal/checkin"
)

const (
	progressCollection = "user_progress"
	checkinsCollection = "checkins"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func defaultProgress(userID string) *UserProgress {
	return &UserProgress{UserID: userID}
}

func (r *firestoreRepository) GetProgress(ctx context.Context, userID string) (*UserProgress, error) {
	doc, err := r.client.Collection(progressCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return defaultProgress(userID), nil
	}
	if err != nil {
		return nil, err
	}

	var progress UserProgress
	if err := doc.DataTo(&progress); err != nil {
		return nil, fmt.Errorf("unmarshal progress: %w", err)
	}
	progress.UserID = userID
	return &progress, nil
}

// AwardActivity rides a single transaction across the check-in document
// (award flags) and the progress document (counters) so a crash between the
// two writes can never leave them inconsistent.
func (r *firestoreRepository) AwardActivity(ctx context.Context, userID string, day time.Time, activity ActivityType) (AwardResult, error) {
	checkinRef := r.client.Collection(checkinsCollection).Doc(checkin.DocID(userID, day))
	progressRef := r.client.Collection(progressCollection).Doc(userID)
	now := time.Now().UTC()

	var result AwardResult
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result = AwardResult{Activity: activity}

		doc, err := tx.Get(checkinRef)
		if status.Code(err) == codes.NotFound {
			return ErrCheckInMissing
		}
		if err != nil {
			return err
		}

		var record checkin.CheckIn
		if err := doc.DataTo(&record); err != nil {
			return fmt.Errorf("unmarshal check-in: %w", err)
		}
		flags := record.PointsAwarded
		if flags == nil {
			flags = map[string]bool{}
		}

		if flags[string(activity)] {
			return nil // already awarded today
		}

		result.Awarded = true
		result.Points = ActivityPoints
		if flags[string(activity.other())] && !flags[AwardKeyDailyBonus] {
			result.BonusAwarded = true
			result.BonusPoints = DailyBonusPoints
		}

		progressExists := true
		if _, err := tx.Get(progressRef); status.Code(err) == codes.NotFound {
			progressExists = false
		} else if err != nil {
			return err
		}

		if !progressExists {
			if err := tx.Set(progressRef, map[string]any{
				"user_id":      userID,
				"streak":       0,
				"achievements": []string{},
				"created_at":   now,
			}, firestore.MergeAll); err != nil {
				return err
			}
		}

		// Merge-set with increment transforms; unlike Update it carries no
		// exists precondition, so it works for brand new progress documents.
		delta := int64(result.Total())
		counters := map[string]any{
			"today_points":       firestore.Increment(delta),
			"season_points":      firestore.Increment(delta),
			"lifetime_points":    firestore.Increment(delta),
			"xp":                 firestore.Increment(delta),
			"last_activity_date": DateKey(day),
			"updated_at":         now,
		}
		if activity == ActivityEveningWrap && record.Sales > 0 {
			counters["sales_day_count"] = firestore.Increment(1)
		}
		if err := tx.Set(progressRef, counters, firestore.MergeAll); err != nil {
			return err
		}

		newFlags := map[string]bool{string(activity): true}
		if result.BonusAwarded {
			newFlags[AwardKeyDailyBonus] = true
		}
		return tx.Set(checkinRef, map[string]any{
			"points_awarded": newFlags,
			"updated_at":     now,
		}, firestore.MergeAll)
	})
	if err != nil {
		return AwardResult{}, err
	}
	return result, nil
}

func (r *firestoreRepository) SetStreak(ctx context.Context, userID string, streak int, newAchievements []string, now time.Time) error {
	progressRef := r.client.Collection(progressCollection).Doc(userID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(progressRef); status.Code(err) == codes.NotFound {
			return tx.Set(progressRef, map[string]any{
				"user_id":      userID,
				"streak":       streak,
				"achievements": newAchievements,
				"updated_at":   now,
			}, firestore.MergeAll)
		} else if err != nil {
			return err
		}

		updates := []firestore.Update{
			{Path: "streak", Value: streak},
			{Path: "updated_at", Value: now},
		}
		if len(newAchievements) > 0 {
			ids := make([]any, len(newAchievements))
			for i, id := range newAchievements {
				ids[i] = id
			}
			updates = append(updates, firestore.Update{Path: "achievements", Value: firestore.ArrayUnion(ids...)})
		}
		return tx.Update(progressRef, updates)
	})
}

func (r *firestoreRepository) ResetDailyCounters(ctx context.Context) (int, error) {
	return r.resetCounter(ctx, "today_points")
}

func (r *firestoreRepository) ResetSeasonCounters(ctx context.Context) (int, error) {
	return r.resetCounter(ctx, "season_points")
}

// resetCounter zeroes the given field on every progress document where it is
// non-zero. Per-user resets are independent so a bulk writer is sufficient.
func (r *firestoreRepository) resetCounter(ctx context.Context, field string) (int, error) {
	iter := r.client.Collection(progressCollection).
		Where(field, ">", 0).
		Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	now := time.Now().UTC()
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return count, err
		}
		if _, err := bw.Update(doc.Ref, []firestore.Update{
			{Path: field, Value: 0},
			{Path: "updated_at", Value: now},
		}); err != nil {
			return count, err
		}
		count++
	}
	bw.End()
	return count, nil
}
