package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayState tracks how far a user's daily check-in has progressed.
// It replaces the pair of completion booleans so the bonus-award guard
// in the points engine can switch over a closed set of states.
type DayState string

const (
	StateEmpty       DayState = "empty"
	StateMorningDone DayState = "morning_done"
	StateEveningDone DayState = "evening_done"
	StateBothDone    DayState = "both_done"
)

// CheckIn is the per-user-per-day record of morning intentions and the
// evening wrap. There is at most one per (user, date) and it is never deleted.
type CheckIn struct {
	ID            string          `json:"id" firestore:"id"`
	UserID        string          `json:"user_id" firestore:"user_id"`
	Date          time.Time       `json:"date" firestore:"date"`
	State         DayState        `json:"state" firestore:"state"`
	Victory       string          `json:"victory,omitempty" firestore:"victory"`
	Focus         string          `json:"focus,omitempty" firestore:"focus"`
	Accomplished  string          `json:"accomplished,omitempty" firestore:"accomplished"`
	Stuck         string          `json:"stuck,omitempty" firestore:"stuck"`
	Sales         int             `json:"sales" firestore:"sales"`
	Quotes        int             `json:"quotes" firestore:"quotes"`
	PointsAwarded map[string]bool `json:"points_awarded" firestore:"points_awarded"`
	CreatedAt     time.Time       `json:"created_at" firestore:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" firestore:"updated_at"`
}

// MorningDone reports whether the morning intentions were recorded.
func (c *CheckIn) MorningDone() bool {
	return c.State == StateMorningDone || c.State == StateBothDone
}

// EveningDone reports whether the evening wrap was recorded.
func (c *CheckIn) EveningDone() bool {
	return c.State == StateEveningDone || c.State == StateBothDone
}

// Complete reports whether both daily activities are done, which is the
// condition the streak calculator counts a day for.
func (c *CheckIn) Complete() bool {
	return c.State == StateBothDone
}

// withMorning returns the state after the morning activity completes.
func withMorning(s DayState) DayState {
	switch s {
	case StateEmpty, StateMorningDone:
		return StateMorningDone
	default:
		return StateBothDone
	}
}

// withEvening returns the state after the evening activity completes.
func withEvening(s DayState) DayState {
	switch s {
	case StateEmpty, StateEveningDone:
		return StateEveningDone
	default:
		return StateBothDone
	}
}

// MorningInput captures the morning intentions form.
type MorningInput struct {
	Victory string `json:"victory"`
	Focus   string `json:"focus"`
}

// Validate ensures the input fields meet the domain constraints.
func (i MorningInput) Validate() error {
	if strings.TrimSpace(i.Focus) == "" {
		return fmt.Errorf("%w: focus is required", ErrInvalidInput)
	}
	return nil
}

// EveningInput captures the evening wrap form.
type EveningInput struct {
	Accomplished string `json:"accomplished"`
	Stuck        string `json:"stuck"`
	Sales        int    `json:"sales"`
	Quotes       int    `json:"quotes"`
}

// Validate ensures the input fields meet the domain constraints.
func (i EveningInput) Validate() error {
	var problems []string
	if i.Sales < 0 {
		problems = append(problems, "sales must be zero or positive")
	}
	if i.Quotes < 0 {
		problems = append(problems, "quotes must be zero or positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// DocID derives the deterministic document identifier for a (user, day) pair,
// which is what enforces the at-most-one-check-in-per-day invariant.
func DocID(userID string, day time.Time) string {
	return userID + "_" + day.Format("2006-01-02")
}

// Repository defines the interface for check-in data access.
type Repository interface {
	// Get returns the check-in for the given user and day, or ErrNotFound.
	Get(ctx context.Context, userID string, day time.Time) (*CheckIn, error)
	// ApplyMorning merges the morning intentions into the day's check-in,
	// creating the document when absent. The returned record reflects the
	// post-merge state.
	ApplyMorning(ctx context.Context, userID string, day time.Time, input MorningInput, now time.Time) (*CheckIn, error)
	// ApplyEvening merges the evening wrap into the day's check-in.
	ApplyEvening(ctx context.Context, userID string, day time.Time, input EveningInput, now time.Time) (*CheckIn, error)
	// ListRange returns check-ins for days in [start, end), oldest first.
	ListRange(ctx context.Context, userID string, start, end time.Time) ([]*CheckIn, error)
}

// ErrNotFound indicates no check-in exists for the requested day.
var ErrNotFound = errors.New("check-in not found")

// ErrInvalidInput indicates the provided data failed validation.
var ErrInvalidInput = errors.New("invalid input")
