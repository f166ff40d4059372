package gamification

import "time"

const dateLayout = "2006-01-02"

// DateKey formats a day as the canonical yyyy-mm-dd key used across the
// check-in and progress documents.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// BusinessCalendar answers business-day questions for the streak walk.
// Weekends are always skipped; holidays are injected so the list can change
// without touching the walk algorithm.
type BusinessCalendar struct {
	loc      *time.Location
	holidays map[string]struct{}
}

// NewBusinessCalendar creates a calendar for the given timezone. Holidays are
// yyyy-mm-dd strings; malformed entries are ignored.
func NewBusinessCalendar(loc *time.Location, holidays []string) *BusinessCalendar {
	if loc == nil {
		loc = time.UTC
	}
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		if _, err := time.Parse(dateLayout, h); err == nil {
			set[h] = struct{}{}
		}
	}
	return &BusinessCalendar{loc: loc, holidays: set}
}

// Location returns the calendar's timezone.
func (c *BusinessCalendar) Location() *time.Location {
	return c.loc
}

// Today truncates the given instant to midnight in the calendar timezone.
func (c *BusinessCalendar) Today(now time.Time) time.Time {
	local := now.In(c.loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// IsBusinessDay reports whether the given day counts toward streaks.
func (c *BusinessCalendar) IsBusinessDay(day time.Time) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[DateKey(day)]
	return !holiday
}

// PreviousBusinessDay returns the closest business day strictly before the
// given day.
func (c *BusinessCalendar) PreviousBusinessDay(day time.Time) time.Time {
	for {
		day = day.AddDate(0, 0, -1)
		if c.IsBusinessDay(day) {
			return day
		}
	}
}
