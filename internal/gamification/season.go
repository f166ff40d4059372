package gamification

import (
	"fmt"
	"time"
)

// Rank is a seasonal tier unlocked by season points.
type Rank struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	MinPoints int    `json:"min_points"`
}

// RankTiers returns the rank ladder, lowest first. IDs must remain stable.
func RankTiers() []Rank {
	return []Rank{
		{ID: "bronze", Label: "Bronze", MinPoints: 0},
		{ID: "silver", Label: "Silver", MinPoints: 250},
		{ID: "gold", Label: "Gold", MinPoints: 600},
		{ID: "platinum", Label: "Platinum", MinPoints: 1200},
		{ID: "diamond", Label: "Diamond", MinPoints: 2500},
		{ID: "legend", Label: "Legend", MinPoints: 5000},
	}
}

// RankForPoints returns the highest rank unlocked for the given season points.
func RankForPoints(points int) Rank {
	tiers := RankTiers()
	current := tiers[0]
	for _, tier := range tiers {
		if points >= tier.MinPoints {
			current = tier
		}
	}
	return current
}

// NextRank returns the next tier above the given points, or false when the
// top tier is already reached.
func NextRank(points int) (Rank, bool) {
	for _, tier := range RankTiers() {
		if points < tier.MinPoints {
			return tier, true
		}
	}
	return Rank{}, false
}

// Season identifies a quarterly competition window.
type Season struct {
	ID       string    `json:"id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// CurrentSeason returns the quarter containing the given instant.
func CurrentSeason(now time.Time) Season {
	y := now.Year()
	quarter := (int(now.Month()) - 1) / 3
	start := time.Date(y, time.Month(quarter*3+1), 1, 0, 0, 0, 0, now.Location())
	return Season{
		ID:       fmt.Sprintf("%d-q%d", y, quarter+1),
		StartsAt: start,
		EndsAt:   start.AddDate(0, 3, 0),
	}
}

// IsSeasonStart reports whether the given day opens a new season, which is
// when the season counters roll over.
func IsSeasonStart(day time.Time) bool {
	return day.Day() == 1 && (int(day.Month())-1)%3 == 0
}
