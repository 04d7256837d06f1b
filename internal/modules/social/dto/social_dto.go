package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendFriendRequestInput struct {
	ToUserID uuid.UUID `json:"to_user_id" binding:"required"`
}

type RespondFriendRequestInput struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
	Action    string    `json:"action" binding:"required,oneof=accept decline"`
}

type CreateTeamInput struct {
	Name string `json:"name" binding:"required,max=100"`
}

type JoinTeamInput struct {
	TeamID uuid.UUID `json:"team_id" binding:"required"`
}

type FriendResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type FriendRequestResponse struct {
	ID           uuid.UUID `json:"id"`
	FromUserID   uuid.UUID `json:"from_user_id"`
	FromUsername string    `json:"from_username"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type RespondResult struct {
	Status string `json:"status"`
}

type TeamResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type JoinTeamResult struct {
	Team   TeamResponse `json:"team"`
	Joined bool         `json:"joined"`
}
