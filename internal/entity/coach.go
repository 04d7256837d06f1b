package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type CoachChatHistory struct {
	ID          uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"size:36;not null;index:idx_chat_user_time,priority:1" json:"user_id"`
	Sender      string    `gorm:"size:10;not null" json:"sender"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	ContextType string    `gorm:"size:32" json:"context_type"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_chat_user_time,priority:2" json:"created_at"`
}

func (h *CoachChatHistory) TableName() string {
	return "coach_chat_history"
}

func (h *CoachChatHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID, err = uuid.NewV7()
	}
	return
}
