package dto

import (
	"time"

	"github.com/google/uuid"
	awardDto "octofit.app/tracker/internal/modules/award/dto"
	commonDto "octofit.app/tracker/pkg/dto"
)

type LogActivityInput struct {
	ActivityType    string `json:"activity_type" binding:"required,activity_type"`
	DurationMinutes int    `json:"duration_minutes" binding:"gt=0"`
	// Date defaults to today when empty.
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

type ActivityResponse struct {
	ID              uuid.UUID `json:"id"`
	ActivityType    string    `json:"activity_type"`
	DurationMinutes int       `json:"duration_minutes"`
	Date            string    `json:"date"`
	CreatedAt       time.Time `json:"created_at"`
}

type LogActivityResponse struct {
	Message             string                    `json:"message"`
	Activity            ActivityResponse          `json:"activity"`
	PointsEarned        int                       `json:"points_earned"`
	Streak              int                       `json:"streak"`
	Milestone           int                       `json:"milestone,omitempty"`
	HousePoints         int                       `json:"house_points"`
	WorkoutsThisWeek    int64                     `json:"workouts_this_week"`
	CompletedChallenges []string                  `json:"completed_challenges"`
	NewBadges           []awardDto.BadgeResponse  `json:"new_badges"`
	NewRewards          []awardDto.RewardResponse `json:"new_rewards"`
}

type PaginatedActivityResponse struct {
	Data []ActivityResponse      `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
