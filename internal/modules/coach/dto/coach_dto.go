package dto

import (
	"time"

	"github.com/google/uuid"
)

type MessageInput struct {
	Message string `json:"message" binding:"max=500"`
	Event   string `json:"event" binding:"omitempty,oneof=house_switch activity_log milestone"`
}

type AskInput struct {
	Message string `json:"message" binding:"required,max=500"`
}

type CoachReply struct {
	Response    string `json:"response"`
	Avatar      string `json:"avatar"`
	ContextType string `json:"context_type"`
	// Fallback is set when the answer came from a template instead of the LLM.
	Fallback bool `json:"fallback,omitempty"`
}

type TipResponse struct {
	Tip  string `json:"tip"`
	Date string `json:"date"`
}

type Recommendations struct {
	Balance           string `json:"balance"`
	Challenge         string `json:"challenge"`
	HouseBoost        string `json:"house_boost"`
	SuggestedActivity string `json:"suggested_activity,omitempty"`
}

type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}

type ChatMessage struct {
	ID          uuid.UUID `json:"id"`
	Sender      string    `json:"sender"`
	Message     string    `json:"message"`
	ContextType string    `json:"context_type"`
	CreatedAt   time.Time `json:"created_at"`
}
