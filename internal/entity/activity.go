package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FitnessActivity is an immutable ledger entry.
type FitnessActivity struct {
	ID              uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"size:36;not null;index:idx_activity_user_date,priority:1" json:"user_id"`
	User            User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ActivityType    string    `gorm:"size:50;not null;index" json:"activity_type"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Date            time.Time `gorm:"type:date;not null;index:idx_activity_user_date,priority:2;index" json:"date"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *FitnessActivity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

// RecommendationLog records a coach recommendation. One carrying a
// SuggestedActivity stays open until an activity of that type is logged.
type RecommendationLog struct {
	ID                 uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"size:36;not null;index" json:"user_id"`
	RecommendationType string     `gorm:"size:100;not null" json:"recommendation_type"`
	SuggestedActivity  string     `gorm:"size:50;index" json:"suggested_activity,omitempty"`
	Message            string     `gorm:"type:text" json:"message"`
	IsCompleted        bool       `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

func (r *RecommendationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
