package checkin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const checkinsCollection = "checkins"

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) Get(ctx context.Context, userID string, day time.Time) (*CheckIn, error) {
	doc, err := r.client.Collection(checkinsCollection).Doc(DocID(userID, day)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record CheckIn
	if err := doc.DataTo(&record); err != nil {
		return nil, fmt.Errorf("unmarshal check-in: %w", err)
	}
	record.ID = doc.Ref.ID
	return &record, nil
}

func (r *firestoreRepository) ApplyMorning(ctx context.Context, userID string, day time.Time, input MorningInput, now time.Time) (*CheckIn, error) {
	docRef := r.client.Collection(checkinsCollection).Doc(DocID(userID, day))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		state, err := readState(tx, docRef)
		if err != nil {
			return err
		}

		data := map[string]interface{}{
			"victory":    strings.TrimSpace(input.Victory),
			"focus":      strings.TrimSpace(input.Focus),
			"state":      withMorning(state),
			"updated_at": now,
		}
		if state == "" {
			fillNewCheckIn(data, userID, day, now)
		}

		return tx.Set(docRef, data, firestore.MergeAll)
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, userID, day)
}

func (r *firestoreRepository) ApplyEvening(ctx context.Context, userID string, day time.Time, input EveningInput, now time.Time) (*CheckIn, error) {
	docRef := r.client.Collection(checkinsCollection).Doc(DocID(userID, day))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		state, err := readState(tx, docRef)
		if err != nil {
			return err
		}

		data := map[string]interface{}{
			"accomplished": strings.TrimSpace(input.Accomplished),
			"stuck":        strings.TrimSpace(input.Stuck),
			"sales":        input.Sales,
			"quotes":       input.Quotes,
			"state":        withEvening(state),
			"updated_at":   now,
		}
		if state == "" {
			fillNewCheckIn(data, userID, day, now)
		}

		return tx.Set(docRef, data, firestore.MergeAll)
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, userID, day)
}

func (r *firestoreRepository) ListRange(ctx context.Context, userID string, start, end time.Time) ([]*CheckIn, error) {
	iter := r.client.Collection(checkinsCollection).
		Where("user_id", "==", userID).
		Where("date", ">=", start).
		Where("date", "<", end).
		OrderBy("date", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var records []*CheckIn
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var record CheckIn
		if err := doc.DataTo(&record); err != nil {
			return nil, fmt.Errorf("unmarshal check-in: %w", err)
		}
		record.ID = doc.Ref.ID
		records = append(records, &record)
	}
	return records, nil
}

// readState returns the stored day state, or an empty string when the
// document does not exist yet.
func readState(tx *firestore.Transaction, docRef *firestore.DocumentRef) (DayState, error) {
	doc, err := tx.Get(docRef)
	if status.Code(err) == codes.NotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var record CheckIn
	if err := doc.DataTo(&record); err != nil {
		return "", fmt.Errorf("unmarshal check-in: %w", err)
	}
	if record.State == "" {
		return StateEmpty, nil
	}
	return record.State, nil
}

func fillNewCheckIn(data map[string]interface{}, userID string, day, now time.Time) {
	data["id"] = DocID(userID, day)
	data["user_id"] = userID
	data["date"] = day
	data["sales"] = dataIntOr(data, "sales", 0)
	data["quotes"] = dataIntOr(data, "quotes", 0)
	data["points_awarded"] = map[string]bool{}
	data["created_at"] = now
}

func dataIntOr(data map[string]interface{}, key string, fallback int) int {
	if v, ok := data[key].(int); ok {
		return v
	}
	return fallback
}
