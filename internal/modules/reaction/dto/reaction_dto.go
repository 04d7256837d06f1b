package dto

import (
	"time"

	"github.com/google/uuid"
)

type ReactInput struct {
	Emoji string `json:"emoji" binding:"required,max=16"`
}

type ReactionResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

type ReactionsResponse struct {
	Reactions []ReactionResponse `json:"reactions"`
	Counts    map[string]int64   `json:"counts"`
}

type ReactResult struct {
	Created bool             `json:"created"`
	Counts  map[string]int64 `json:"counts"`
}
