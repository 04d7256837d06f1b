package dto

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"
)

type UpdateProfileInput struct {
	Avatar         *string `json:"avatar" binding:"omitempty,max=255"`
	Bio            *string `json:"bio" binding:"omitempty,max=1000"`
	Interests      *string `json:"interests" binding:"omitempty,max=255"`
	EmailReminders *bool   `json:"email_reminders"`
	BotPersona     *string `json:"bot_persona" binding:"omitempty,oneof=arnold jennifer katy mel"`
}

type SaveChecklistInput struct {
	State string `json:"state" binding:"required,max=10000"`
}

type ChecklistResponse struct {
	State *string `json:"state"`
}

// AvatarFile is an uploaded avatar image.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

type HouseSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Mascot string    `json:"mascot"`
	Color  string    `json:"color"`
	Points int       `json:"points"`
}

type ProfileResponse struct {
	UserID             uuid.UUID       `json:"user_id"`
	Username           string          `json:"username"`
	FullName           string          `json:"full_name"`
	Avatar             string          `json:"avatar"`
	Bio                string          `json:"bio"`
	Interests          string          `json:"interests"`
	House              *HouseSummary   `json:"house"`
	StreakCount        int             `json:"streak_count"`
	EmailReminders     bool            `json:"email_reminders"`
	BotPersona         string          `json:"bot_persona"`
	OnboardingComplete bool            `json:"onboarding_complete"`
	OnboardingAnswers  json.RawMessage `json:"onboarding_answers,omitempty"`
}
