// Package gamification holds the pure rules behind streaks, challenge
// matching, house points and badge/reward grants. Nothing here touches storage.
package gamification

import (
	"sort"
	"time"
)

// Day truncates t to its calendar date in t's own location, returned as UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateStreak counts consecutive calendar days ending at the most recent
// date in dates. Several activities on one day count as that single day.
func CalculateStreak(dates []time.Time) int {
	days := distinctDaysDesc(dates)
	if len(days) == 0 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if !days[i-1].AddDate(0, 0, -1).Equal(days[i]) {
			break
		}
		streak++
	}
	return streak
}

func distinctDaysDesc(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, t := range dates {
		d := Day(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// StartOfWeek is the Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// StreakMilestones are the streak lengths worth celebrating.
var StreakMilestones = []int{3, 7, 14, 30, 50, 100}

// MilestoneReached returns the highest milestone in (last, streak], or 0.
func MilestoneReached(streak, last int) int {
	reached := 0
	for _, m := range StreakMilestones {
		if m > last && m <= streak {
			reached = m
		}
	}
	return reached
}
