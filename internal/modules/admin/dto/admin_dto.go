package dto

import (
	"github.com/google/uuid"
)

type CreateChallengeInput struct {
	Description       string  `json:"description" binding:"required,max=255"`
	XP                int     `json:"xp" binding:"omitempty,min=1,max=1000"`
	CanonicalActivity *string `json:"canonical_activity" binding:"omitempty,activity_type"`
}

// CreateBadgeInput carries an optional unlock rule. Without RuleKind the rule
// is derived from Name.
type CreateBadgeInput struct {
	Name          string   `json:"name" binding:"required,max=100"`
	Emoji         string   `json:"emoji" binding:"max=10"`
	Desc          string   `json:"desc" binding:"max=255"`
	RuleKind      string   `json:"rule_kind" binding:"omitempty,oneof=challenge_count streak_days complete_keyword_challenges activity_keyword_count"`
	RuleThreshold int      `json:"rule_threshold" binding:"min=0"`
	RuleKeywords  []string `json:"rule_keywords"`
}

type CreateRewardInput struct {
	Name             string `json:"name" binding:"required,max=100"`
	Description      string `json:"description"`
	Icon             string `json:"icon" binding:"max=100"`
	UnlockPoints     int    `json:"unlock_points" binding:"min=0"`
	UnlockStreak     int    `json:"unlock_streak" binding:"min=0"`
	UnlockChallenges int    `json:"unlock_challenges" binding:"min=0"`
}

type ReviewSuggestionInput struct {
	Approved *bool `json:"approved" binding:"required"`
}

type ChallengeResponse struct {
	ID                uuid.UUID `json:"id"`
	HouseID           uuid.UUID `json:"house_id"`
	Description       string    `json:"description"`
	XP                int       `json:"xp"`
	CanonicalActivity *string   `json:"canonical_activity,omitempty"`
}

type BadgeResponse struct {
	ID            uuid.UUID `json:"id"`
	HouseID       uuid.UUID `json:"house_id"`
	Name          string    `json:"name"`
	Emoji         string    `json:"emoji"`
	Desc          string    `json:"desc"`
	RuleKind      string    `json:"rule_kind"`
	RuleThreshold int       `json:"rule_threshold"`
	RuleKeywords  []string  `json:"rule_keywords,omitempty"`
}

type RewardResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon"`
	UnlockPoints     int       `json:"unlock_points"`
	UnlockStreak     int       `json:"unlock_streak"`
	UnlockChallenges int       `json:"unlock_challenges"`
}

type ReviewResponse struct {
	Message   string             `json:"message"`
	Challenge *ChallengeResponse `json:"challenge,omitempty"`
}
