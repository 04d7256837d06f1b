package gamification

// MinutesPerPoint is how many logged minutes earn one house point.
const MinutesPerPoint = 10

// PointsForDuration is floor(minutes / MinutesPerPoint); non-positive input earns nothing.
func PointsForDuration(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return minutes / MinutesPerPoint
}

const (
	WeeklyWorkoutGoal = 3
	StreakGoal        = 7
	HousePointsGoal   = 500
)

// Percent is min(100, value/goal*100) truncated, 0 for non-positive value.
func Percent(value, goal int) int {
	if value <= 0 || goal <= 0 {
		return 0
	}
	p := value * 100 / goal
	if p > 100 {
		return 100
	}
	return p
}
