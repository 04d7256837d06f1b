package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AcceptedChallenge is open while CompletedAt is nil. The unique pair makes
// each challenge one-shot per user.
type AcceptedChallenge struct {
	ID                   uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"size:36;not null;uniqueIndex:idx_user_challenge,priority:1" json:"user_id"`
	User                 User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ChallengeDescription string     `gorm:"size:255;not null;uniqueIndex:idx_user_challenge,priority:2;index" json:"challenge_description"`
	XPPoints             int        `gorm:"not null;default:0" json:"xp_points"`
	AcceptedAt           time.Time  `gorm:"autoCreateTime;index" json:"accepted_at"`
	CompletedAt          *time.Time `gorm:"index" json:"completed_at"`
}

func (a *AcceptedChallenge) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

func (a AcceptedChallenge) IsCompleted() bool {
	return a.CompletedAt != nil
}

type ChallengeSuggestion struct {
	ID          uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"size:36;not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	HouseID     uuid.UUID `gorm:"size:36;not null;index" json:"house_id"`
	House       House     `gorm:"constraint:OnDelete:CASCADE" json:"house,omitempty"`
	Description string    `gorm:"size:255;not null" json:"description"`
	Reviewed    bool      `gorm:"not null;default:false;index" json:"reviewed"`
	Approved    bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *ChallengeSuggestion) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
