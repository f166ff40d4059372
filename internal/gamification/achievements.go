package gamification

// Achievement IDs must remain stable because clients persist them.
var streakMilestones = []struct {
	Days int
	ID   string
}{
	{3, "streak_3"},
	{7, "streak_7"},
	{10, "streak_10"},
	{30, "streak_30"},
}

var salesDayMilestones = []struct {
	Count int
	ID    string
}{
	{5, "sales_days_5"},
	{10, "sales_days_10"},
}

// newlyUnlocked returns achievements crossed by the given streak or the
// user's cumulative sales-day count that are not already in the unlocked set.
func newlyUnlocked(progress *UserProgress, streak int) []string {
	var unlocked []string
	for _, m := range streakMilestones {
		if streak >= m.Days && !progress.HasAchievement(m.ID) {
			unlocked = append(unlocked, m.ID)
		}
	}
	for _, m := range salesDayMilestones {
		if progress.SalesDayCount >= m.Count && !progress.HasAchievement(m.ID) {
			unlocked = append(unlocked, m.ID)
		}
	}
	return unlocked
}
