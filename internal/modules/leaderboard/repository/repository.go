package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
)

// MemberRow is a house member with their activity total.
type MemberRow struct {
	UserID        uuid.UUID
	Username      string
	Avatar        string
	StreakCount   int
	ActivityCount int
}

type LeaderboardRepository interface {
	HousesByPoints(ctx context.Context) ([]entity.House, error)
	MembersByActivity(ctx context.Context, houseID uuid.UUID, limit int) ([]MemberRow, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) HousesByPoints(ctx context.Context) ([]entity.House, error) {
	var houses []entity.House
	err := r.db.WithContext(ctx).
		Order("points DESC, name ASC").
		Find(&houses).Error
	return houses, err
}

func (r *leaderboardRepository) MembersByActivity(ctx context.Context, houseID uuid.UUID, limit int) ([]MemberRow, error) {
	var rows []MemberRow
	err := r.db.WithContext(ctx).
		Table("profiles").
		Select("users.id AS user_id, users.username, profiles.avatar, profiles.streak_count, COUNT(fitness_activities.id) AS activity_count").
		Joins("JOIN users ON users.id = profiles.user_id").
		Joins("LEFT JOIN fitness_activities ON fitness_activities.user_id = profiles.user_id").
		Where("profiles.house_id = ? AND users.is_active = ?", houseID, true).
		Group("users.id, users.username, profiles.avatar, profiles.streak_count").
		Order("activity_count DESC, users.username ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
