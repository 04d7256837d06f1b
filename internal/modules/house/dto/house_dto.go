package dto

import (
	"github.com/google/uuid"
	awardDto "octofit.app/tracker/internal/modules/award/dto"
	challengeDto "octofit.app/tracker/internal/modules/challenge/dto"
	leaderboardDto "octofit.app/tracker/internal/modules/leaderboard/dto"
	statDto "octofit.app/tracker/internal/modules/stat/dto"
)

type HouseResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Mascot      string    `json:"mascot"`
	Color       string    `json:"color"`
	Theme       string    `json:"theme"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
}

type JoinHouseInput struct {
	HouseID uuid.UUID `json:"house_id" binding:"required"`
}

type JoinHouseResponse struct {
	Message string        `json:"message"`
	House   HouseResponse `json:"house"`
}

type HouseDetailResponse struct {
	House        HouseResponse                   `json:"house"`
	IsMember     bool                            `json:"is_member"`
	Challenges   challengeDto.ChallengeProgress  `json:"challenges"`
	Badges       []awardDto.BadgeResponse        `json:"badges"`
	Rewards      []awardDto.RewardResponse       `json:"rewards"`
	Members      []leaderboardDto.MemberStanding `json:"members"`
	Activities   []string                        `json:"activities"`
	Quote        string                          `json:"quote"`
	ShowConfetti bool                            `json:"show_confetti"`
	Progress     statDto.ProgressResponse        `json:"progress"`
}
