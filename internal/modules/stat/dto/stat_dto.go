package dto

type ProgressResponse struct {
	WorkoutsThisWeek int64 `json:"workouts_this_week"`
	Streak           int   `json:"streak"`
	HousePoints      int   `json:"house_points"`
	WorkoutPercent   int   `json:"workout_percent"`
	StreakPercent    int   `json:"streak_percent"`
	PointsPercent    int   `json:"points_percent"`
}

// AnalyticsResponse holds parallel per-day series, oldest day first.
type AnalyticsResponse struct {
	Dates               []string `json:"dates"`
	ActivityCounts      []int    `json:"activity_counts"`
	HouseActivityCounts []int    `json:"house_activity_counts"`
	Streak              int      `json:"streak"`
}

type CommunityStats struct {
	TotalUsers int64 `json:"total_users"`
}
