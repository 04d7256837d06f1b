package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/gamification"
)

// UserBadge is a grant; idx_user_badge keeps it at most once per user.
type UserBadge struct {
	ID       uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	UserID   uuid.UUID  `gorm:"size:36;not null;uniqueIndex:idx_user_badge,priority:1" json:"user_id"`
	BadgeID  uuid.UUID  `gorm:"size:36;not null;uniqueIndex:idx_user_badge,priority:2;index" json:"badge_id"`
	Badge    HouseBadge `gorm:"constraint:OnDelete:CASCADE" json:"badge"`
	EarnedAt time.Time  `gorm:"autoCreateTime;index" json:"earned_at"`
}

func (b *UserBadge) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

type Reward struct {
	ID               uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	Name             string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Icon             string    `gorm:"size:100" json:"icon"`
	UnlockPoints     int       `gorm:"not null;default:0" json:"unlock_points"`
	UnlockStreak     int       `gorm:"not null;default:0" json:"unlock_streak"`
	UnlockChallenges int       `gorm:"not null;default:0" json:"unlock_challenges"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

func (r Reward) Thresholds() gamification.RewardThresholds {
	return gamification.RewardThresholds{
		Points:     r.UnlockPoints,
		Streak:     r.UnlockStreak,
		Challenges: r.UnlockChallenges,
	}
}

type UserReward struct {
	ID         uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_user_reward,priority:1" json:"user_id"`
	RewardID   uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_user_reward,priority:2" json:"reward_id"`
	Reward     Reward    `gorm:"constraint:OnDelete:CASCADE" json:"reward"`
	UnlockedAt time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

func (r *UserReward) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
