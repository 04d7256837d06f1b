package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationInfo              = "info"
	NotificationBadge             = "badge"
	NotificationReward            = "reward"
	NotificationChallengeComplete = "challenge"
	NotificationReaction          = "reaction"
	NotificationComment           = "comment"
	NotificationFriend            = "friend"
)

type Notification struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"size:36;not null;index:idx_notification_user_read,priority:1" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Message   string    `gorm:"size:255;not null" json:"message"`
	Type      string    `gorm:"size:50;not null;default:info" json:"type"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notification_user_read,priority:2" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
