package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction is an emoji on a feed item, unique per (user, item, emoji).
type Reaction struct {
	ID         uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"size:36;not null;index:idx_reactions_unique,unique,priority:1" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	FeedItemID uuid.UUID `gorm:"size:36;not null;index:idx_reactions_unique,unique,priority:2;index:idx_reactions_lookup" json:"feed_item_id"`
	Emoji      string    `gorm:"size:16;not null;index:idx_reactions_unique,unique,priority:3" json:"emoji"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
