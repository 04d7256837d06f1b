package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"octofit.app/tracker/internal/entity"
)

type SocialRepository interface {
	WithTx(tx *gorm.DB) SocialRepository

	// CreateFriendRequest inserts req unless the sender already asked this
	// recipient, and reports whether a row was created.
	CreateFriendRequest(ctx context.Context, req *entity.FriendRequest) (bool, error)
	FindRequestForRecipient(ctx context.Context, id, toUserID uuid.UUID) (*entity.FriendRequest, error)
	// AnswerRequest moves a pending request to status and reports whether it was still pending.
	AnswerRequest(ctx context.Context, id uuid.UUID, status string) (bool, error)
	ListPendingRequests(ctx context.Context, toUserID uuid.UUID) ([]entity.FriendRequest, error)

	CreateFriendship(ctx context.Context, friendship *entity.Friendship) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]entity.User, error)

	CreateTeam(ctx context.Context, team *entity.Team) error
	FindTeamByID(ctx context.Context, id uuid.UUID) (*entity.Team, error)
	// AddMember reports whether the user was not already in the team.
	AddMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	ListTeamsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Team, error)
}

type socialRepository struct {
	db *gorm.DB
}

func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) WithTx(tx *gorm.DB) SocialRepository {
	return &socialRepository{db: tx}
}

func (r *socialRepository) CreateFriendRequest(ctx context.Context, req *entity.FriendRequest) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit("FromUser", "ToUser").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoNothing: true,
		}).
		Create(req)
	return res.RowsAffected > 0, res.Error
}

func (r *socialRepository) FindRequestForRecipient(ctx context.Context, id, toUserID uuid.UUID) (*entity.FriendRequest, error) {
	var req entity.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("FromUser").
		Where("id = ? AND to_user_id = ?", id, toUserID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *socialRepository) AnswerRequest(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.FriendRequest{}).
		Where("id = ? AND status = ?", id, entity.FriendRequestPending).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

func (r *socialRepository) ListPendingRequests(ctx context.Context, toUserID uuid.UUID) ([]entity.FriendRequest, error) {
	var reqs []entity.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("FromUser", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Where("to_user_id = ? AND status = ?", toUserID, entity.FriendRequestPending).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *socialRepository) CreateFriendship(ctx context.Context, friendship *entity.Friendship) error {
	return r.db.WithContext(ctx).
		Omit("User1", "User2").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).
		Create(friendship).Error
}

func (r *socialRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Select("users.id", "users.username").
		Joins("JOIN friendships f ON (f.user1_id = ? AND f.user2_id = users.id) OR (f.user2_id = ? AND f.user1_id = users.id)", userID, userID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

func (r *socialRepository) CreateTeam(ctx context.Context, team *entity.Team) error {
	return r.db.WithContext(ctx).Omit("CreatedBy").Create(team).Error
}

func (r *socialRepository) FindTeamByID(ctx context.Context, id uuid.UUID) (*entity.Team, error) {
	var team entity.Team
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *socialRepository) AddMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit("Team", "User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&entity.TeamMembership{TeamID: teamID, UserID: userID})
	return res.RowsAffected > 0, res.Error
}

func (r *socialRepository) ListTeamsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Team, error) {
	var teams []entity.Team
	err := r.db.WithContext(ctx).
		Joins("JOIN team_memberships tm ON tm.team_id = teams.id").
		Where("tm.user_id = ?", userID).
		Order("tm.joined_at ASC, teams.id ASC").
		Find(&teams).Error
	return teams, err
}
