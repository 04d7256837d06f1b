package service

import (
	"fmt"

	leaderboardDto "octofit.app/tracker/internal/modules/leaderboard/dto"
)

// CloseRaceGap is the largest lead over second place that still gets a prediction.
const CloseRaceGap = 20

// rankHouses assigns 1-based positions to houses already sorted by points.
func rankHouses(standings []leaderboardDto.HouseStanding) {
	for i := range standings {
		standings[i].Position = i + 1
	}
}

// Predict returns the close-race message for houses sorted by points, or "".
func Predict(standings []leaderboardDto.HouseStanding) string {
	if len(standings) < 2 {
		return ""
	}
	first, second := standings[0], standings[1]
	if first.Points-second.Points > CloseRaceGap {
		return ""
	}
	return fmt.Sprintf("If %s logs 2 more workouts, they'll take the lead!", second.Name)
}
