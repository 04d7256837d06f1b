package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressPhoto struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"size:36;not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	PublicID  string    `gorm:"size:255" json:"-"`
	Caption   string    `gorm:"size:255" json:"caption"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *ProgressPhoto) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
