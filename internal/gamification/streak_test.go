package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dates(ss ...string) []time.Time {
	out := make([]time.Time, 0, len(ss))
	for _, s := range ss {
		out = append(out, date(s))
	}
	return out
}

func TestCalculateStreak(t *testing.T) {
	cases := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"empty", nil, 0},
		{"single", dates("2026-03-10"), 1},
		{"three consecutive", dates("2026-03-10", "2026-03-09", "2026-03-08"), 3},
		{"unsorted input", dates("2026-03-08", "2026-03-10", "2026-03-09"), 3},
		{"gap stops the count", dates("2026-03-10", "2026-03-09", "2026-03-07", "2026-03-06"), 2},
		{"same day twice counts once", dates("2026-03-10", "2026-03-10"), 1},
		{"duplicate on latest day continues", dates("2026-03-10", "2026-03-10", "2026-03-09"), 2},
		{"duplicate in the middle continues", dates("2026-03-10", "2026-03-09", "2026-03-09", "2026-03-08"), 3},
		{"month boundary", dates("2026-03-01", "2026-02-28", "2026-02-27"), 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateStreak(tc.dates))
		})
	}
}

func TestCalculateStreakNeverExceedsDistinctDays(t *testing.T) {
	base := date("2026-01-01")
	var ds []time.Time
	for i := 0; i < 40; i++ {
		// three entries per day over a run of days with a hole every 9th day
		if i%9 == 8 {
			continue
		}
		d := base.AddDate(0, 0, i)
		ds = append(ds, d, d.Add(3*time.Hour), d.Add(20*time.Hour))

		distinct := map[time.Time]bool{}
		for _, x := range ds {
			distinct[Day(x)] = true
		}
		got := CalculateStreak(ds)
		assert.LessOrEqual(t, got, len(distinct))
		assert.GreaterOrEqual(t, got, 1)
	}
}

func TestDayIgnoresClock(t *testing.T) {
	in := time.Date(2026, 5, 4, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, date("2026-05-04"), Day(in))
}

func TestStartOfWeek(t *testing.T) {
	assert.Equal(t, date("2026-10-12"), StartOfWeek(date("2026-10-16"))) // Friday
	assert.Equal(t, date("2026-10-12"), StartOfWeek(date("2026-10-12"))) // Monday
	assert.Equal(t, date("2026-10-12"), StartOfWeek(date("2026-10-18"))) // Sunday
}

func TestMilestoneReached(t *testing.T) {
	assert.Equal(t, 0, MilestoneReached(2, 0))
	assert.Equal(t, 3, MilestoneReached(3, 0))
	assert.Equal(t, 0, MilestoneReached(5, 3))
	assert.Equal(t, 7, MilestoneReached(7, 3))
	assert.Equal(t, 14, MilestoneReached(20, 3), "a skipped milestone collapses into the highest one")
	assert.Equal(t, 0, MilestoneReached(100, 100))
}
