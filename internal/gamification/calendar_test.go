package gamification

import (
	"testing"
	"time"
)

func TestCalendarIsBusinessDay(t *testing.T) {
	cal := NewBusinessCalendar(time.UTC, []string{"2026-07-03", "not-a-date"})

	cases := []struct {
		day  string
		want bool
	}{
		{"2026-03-04", true},  // Wednesday
		{"2026-03-07", false}, // Saturday
		{"2026-03-08", false}, // Sunday
		{"2026-07-03", false}, // injected holiday, a Friday
		{"2026-07-06", true},  // Monday after
	}
	for _, tc := range cases {
		day, err := time.Parse("2006-01-02", tc.day)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.day, err)
		}
		if got := cal.IsBusinessDay(day); got != tc.want {
			t.Fatalf("IsBusinessDay(%s) = %v, want %v", tc.day, got, tc.want)
		}
	}
}

func TestCalendarPreviousBusinessDay(t *testing.T) {
	cal := NewBusinessCalendar(time.UTC, []string{"2026-07-03"})

	cases := []struct {
		from string
		want string
	}{
		{"2026-03-04", "2026-03-03"}, // plain weekday step
		{"2026-03-09", "2026-03-06"}, // Monday jumps the weekend to Friday
		{"2026-07-06", "2026-07-02"}, // Monday jumps weekend plus Friday holiday
	}
	for _, tc := range cases {
		from, err := time.Parse("2006-01-02", tc.from)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.from, err)
		}
		if got := DateKey(cal.PreviousBusinessDay(from)); got != tc.want {
			t.Fatalf("PreviousBusinessDay(%s) = %s, want %s", tc.from, got, tc.want)
		}
	}
}

func TestCalendarToday_TruncatesInTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	cal := NewBusinessCalendar(ny, nil)

	// 2am UTC on March 5th is still the evening of March 4th in New York.
	now := time.Date(2026, 3, 5, 2, 0, 0, 0, time.UTC)
	today := cal.Today(now)

	if DateKey(today) != "2026-03-04" {
		t.Fatalf("expected local day 2026-03-04, got %s", DateKey(today))
	}
	if today.Hour() != 0 || today.Location() != ny {
		t.Fatalf("expected local midnight, got %v", today)
	}
}
