package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/gamification"
)

type House struct {
	ID            uuid.UUID        `gorm:"size:36;primaryKey" json:"id"`
	Name          string           `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Mascot        string           `gorm:"size:50" json:"mascot"`
	Color         string           `gorm:"size:20" json:"color"`
	Theme         string           `gorm:"size:100" json:"theme"`
	Description   string           `gorm:"type:text" json:"description"`
	Points        int              `gorm:"not null;default:0" json:"points"`
	ConfettiShown bool             `gorm:"not null;default:false" json:"-"`
	Challenges    []HouseChallenge `gorm:"constraint:OnDelete:CASCADE" json:"challenges,omitempty"`
	Badges        []HouseBadge     `gorm:"constraint:OnDelete:CASCADE" json:"badges,omitempty"`
	Activities    []HouseActivity  `gorm:"constraint:OnDelete:CASCADE" json:"activities,omitempty"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (h *House) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID, err = uuid.NewV7()
	}
	return
}

// HouseActivity is a suggested activity shown on the house page.
type HouseActivity struct {
	ID          uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	HouseID     uuid.UUID `gorm:"size:36;not null;index" json:"house_id"`
	Description string    `gorm:"size:255;not null" json:"description"`
}

func (a *HouseActivity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

type HouseChallenge struct {
	ID          uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	HouseID     uuid.UUID `gorm:"size:36;not null;index;uniqueIndex:idx_house_challenge,priority:1" json:"house_id"`
	Description string    `gorm:"size:255;not null;uniqueIndex:idx_house_challenge,priority:2" json:"description"`
	XP          int       `gorm:"not null;default:10" json:"xp"`
	// CanonicalActivity, when set, is the only activity type that completes this challenge.
	CanonicalActivity *string   `gorm:"size:50" json:"canonical_activity,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *HouseChallenge) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

func (c HouseChallenge) Matcher() gamification.Challenge {
	ch := gamification.Challenge{Description: c.Description}
	if c.CanonicalActivity != nil {
		ch.CanonicalActivity = *c.CanonicalActivity
	}
	return ch
}

type HouseBadge struct {
	ID      uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	HouseID uuid.UUID `gorm:"size:36;not null;index" json:"house_id"`
	Name    string    `gorm:"size:100;not null" json:"name"`
	Emoji   string    `gorm:"size:10" json:"emoji"`
	Desc    string    `gorm:"size:255" json:"desc"`

	RuleKind      string `gorm:"size:40" json:"rule_kind"`
	RuleThreshold int    `gorm:"not null;default:0" json:"rule_threshold"`
	RuleKeywords  string `gorm:"size:255" json:"rule_keywords,omitempty"`
}

func (b *HouseBadge) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

// Rule returns the stored rule, or the one implied by the badge name when none is stored.
func (b HouseBadge) Rule() gamification.BadgeRule {
	kind := gamification.RuleKind(b.RuleKind)
	if !kind.Valid() {
		return gamification.RuleFromName(b.Name)
	}
	return gamification.BadgeRule{
		Kind:      kind,
		Threshold: b.RuleThreshold,
		Keywords:  gamification.ParseKeywords(b.RuleKeywords),
	}
}
