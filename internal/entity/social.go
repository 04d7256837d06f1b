package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestDeclined = "declined"
)

// FriendRequest is unique per direction: a second request from the same
// sender to the same recipient is rejected.
type FriendRequest struct {
	ID         uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	FromUserID uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_friend_request_pair,priority:1" json:"from_user_id"`
	FromUser   User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ToUserID   uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_friend_request_pair,priority:2;index" json:"to_user_id"`
	ToUser     User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Status     string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *FriendRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// Friendship stores each pair once with the lower id in User1ID.
type Friendship struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	User1ID   uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_friendship_pair,priority:1" json:"user1_id"`
	User1     User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User2ID   uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_friendship_pair,priority:2;index" json:"user2_id"`
	User2     User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

// NewFriendship orders the pair so (a, b) and (b, a) hit the same unique key.
func NewFriendship(a, b uuid.UUID) *Friendship {
	if a.String() > b.String() {
		a, b = b, a
	}
	return &Friendship{User1ID: a, User2ID: b}
}

type Team struct {
	ID          uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	CreatedByID *uuid.UUID `gorm:"size:36;index" json:"created_by_id"`
	CreatedBy   *User      `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

type TeamMembership struct {
	ID       uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	TeamID   uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_team_member,priority:1" json:"team_id"`
	Team     Team      `gorm:"constraint:OnDelete:CASCADE" json:"team"`
	UserID   uuid.UUID `gorm:"size:36;not null;uniqueIndex:idx_team_member,priority:2;index" json:"user_id"`
	User     User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (m *TeamMembership) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
