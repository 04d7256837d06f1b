package dto

import (
	"time"

	"github.com/google/uuid"
	awardDto "octofit.app/tracker/internal/modules/award/dto"
)

type AcceptChallengeInput struct {
	Description string `json:"description" binding:"required,max=255"`
	XP          *int   `json:"xp" binding:"omitempty,min=0,max=1000"`
}

type CompleteChallengeInput struct {
	Description string `json:"description" binding:"required,max=255"`
	XP          *int   `json:"xp" binding:"omitempty,min=0,max=1000"`
}

type SuggestChallengeInput struct {
	HouseID     uuid.UUID `json:"house_id" binding:"required"`
	Description string    `json:"description" binding:"required,min=5,max=255"`
}

type ChallengeStatus struct {
	ID                uuid.UUID `json:"id"`
	Description       string    `json:"description"`
	XP                int       `json:"xp"`
	CanonicalActivity *string   `json:"canonical_activity,omitempty"`
	Accepted          bool      `json:"is_accepted"`
	Completed         bool      `json:"is_completed"`
}

// ChallengeProgress is the caller's standing against one house catalog.
type ChallengeProgress struct {
	Challenges []ChallengeStatus `json:"challenges"`
	Accepted   []string          `json:"accepted"`
	Completed  []string          `json:"completed"`
	Total      int               `json:"total"`
	Done       int               `json:"done"`
	Percent    int               `json:"percent"`
}

type ChallengeActionResponse struct {
	Message    string                    `json:"message"`
	XP         int                       `json:"xp"`
	Progress   ChallengeProgress         `json:"progress"`
	NewBadges  []awardDto.BadgeResponse  `json:"new_badges,omitempty"`
	NewRewards []awardDto.RewardResponse `json:"new_rewards,omitempty"`
}

type SuggestionResponse struct {
	ID          uuid.UUID `json:"id"`
	HouseID     uuid.UUID `json:"house_id"`
	HouseName   string    `json:"house_name,omitempty"`
	Username    string    `json:"username,omitempty"`
	Description string    `json:"description"`
	Reviewed    bool      `json:"reviewed"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
}

type SearchResult struct {
	ID          string `json:"id"`
	HouseID     string `json:"house_id"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
}

type LatestChallenge struct {
	Description string    `json:"description"`
	XP          int       `json:"xp"`
	CompletedAt time.Time `json:"completed_at"`
}

type LatestBadge struct {
	Name     string    `json:"name"`
	Emoji    string    `json:"emoji"`
	EarnedAt time.Time `json:"earned_at"`
}

type LatestResponse struct {
	Challenge *LatestChallenge `json:"challenge"`
	Badge     *LatestBadge     `json:"badge"`
}
