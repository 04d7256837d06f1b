package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID           uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       *uint     `json:"role_id"`
	Role         Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	GoogleID     *string   `gorm:"size:100;uniqueIndex" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Profile      *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

const (
	PersonaArnold   = "arnold"
	PersonaJennifer = "jennifer"
	PersonaKaty     = "katy"
	PersonaMel      = "mel"
)

// Profile is per-user mutable state. StreakCount caches the streak derived
// from the activity ledger and is rewritten on every logged activity.
type Profile struct {
	UserID    uuid.UUID  `gorm:"size:36;primaryKey" json:"user_id"`
	HouseID   *uuid.UUID `gorm:"size:36;index" json:"house_id"`
	House     *House     `gorm:"constraint:OnDelete:SET NULL" json:"house,omitempty"`
	FullName  string     `gorm:"size:100" json:"full_name"`
	Avatar    string     `gorm:"size:255" json:"avatar"`
	Bio       string     `gorm:"type:text" json:"bio"`
	Interests string     `gorm:"size:255" json:"interests"`

	StreakCount           int        `gorm:"not null;default:0" json:"streak_count"`
	FirstActivityLoggedAt *time.Time `json:"first_activity_logged_at,omitempty"`
	HouseJoinedAt         *time.Time `json:"house_joined_at,omitempty"`
	LastStreakMilestone   int        `gorm:"not null;default:0" json:"-"`

	EmailReminders bool   `gorm:"not null;default:true" json:"email_reminders"`
	BotPersona     string `gorm:"size:20;not null;default:arnold" json:"bot_persona"`

	OnboardingComplete bool           `gorm:"not null;default:false" json:"onboarding_complete"`
	OnboardingAnswers  datatypes.JSON `json:"onboarding_answers,omitempty"`

	// ChecklistState is opaque client state for the getting-started checklist.
	ChecklistState *string `gorm:"type:text" json:"-"`

	LastTipDate *time.Time `gorm:"type:date" json:"-"`
	LastTipText string     `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
