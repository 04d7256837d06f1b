package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FeedActionLoggedActivity = "logged"
	FeedActionCompleted      = "completed"
	FeedActionEarnedBadge    = "earned"
	FeedActionJoinedHouse    = "joined"
	FeedActionUnlockedReward = "unlocked"
)

// ActivityFeedItem is one line on a house's activity feed.
type ActivityFeedItem struct {
	ID           uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"size:36;not null;index" json:"user_id"`
	User         User       `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	HouseID      *uuid.UUID `gorm:"size:36;index:idx_feed_house_created,priority:1" json:"house_id"`
	Action       string     `gorm:"size:100;not null" json:"action"`
	Description  string     `gorm:"type:text" json:"description"`
	TargetUserID *uuid.UUID `gorm:"size:36" json:"target_user_id,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index:idx_feed_house_created,priority:2" json:"created_at"`
}

func (f *ActivityFeedItem) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

type Comment struct {
	ID         uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"size:36;not null" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	FeedItemID uuid.UUID `gorm:"size:36;not null;index" json:"feed_item_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
