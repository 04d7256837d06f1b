package dto

import "github.com/google/uuid"

// HouseStanding is one row of the house leaderboard. Position is 1-based.
type HouseStanding struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Mascot   string    `json:"mascot"`
	Color    string    `json:"color"`
	Points   int       `json:"points"`
	Position int       `json:"position"`
}

type LeaderboardResponse struct {
	Houses     []HouseStanding `json:"houses"`
	Prediction string          `json:"prediction,omitempty"`
}

// MemberStanding ranks a house member by logged activities.
type MemberStanding struct {
	UserID        uuid.UUID `json:"user_id"`
	Username      string    `json:"username"`
	Avatar        string    `json:"avatar"`
	ActivityCount int       `json:"activity_count"`
	Streak        int       `json:"streak"`
	Position      int       `json:"position"`
}
