package dto

import (
	"time"

	"github.com/google/uuid"
)

type BadgeResponse struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Emoji    string     `json:"emoji"`
	Desc     string     `json:"desc"`
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

type RewardResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon"`
	UnlockPoints     int       `json:"unlock_points"`
	UnlockStreak     int       `json:"unlock_streak"`
	UnlockChallenges int       `json:"unlock_challenges"`
	Unlocked         bool      `json:"unlocked"`
}
