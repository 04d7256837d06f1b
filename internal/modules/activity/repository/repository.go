package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/pkg/dto"
)

type ActivityRepository interface {
	WithTx(tx *gorm.DB) ActivityRepository
	Create(ctx context.Context, activity *entity.FitnessActivity) error
	// Dates returns the date of every activity the user logged.
	Dates(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
	DatesBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]time.Time, error)
	HouseDatesBetween(ctx context.Context, houseID uuid.UUID, from, to time.Time) ([]time.Time, error)
	List(ctx context.Context, userID uuid.UUID, q dto.PageQuery) ([]entity.FitnessActivity, int64, error)
	CountSince(ctx context.Context, userID uuid.UUID, from time.Time) (int64, error)
	Latest(ctx context.Context, userID uuid.UUID) (*entity.FitnessActivity, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.FitnessActivity, error)
	// TypeCounts groups the user's activities by lower-cased type.
	TypeCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error)
	CompleteRecommendations(ctx context.Context, userID uuid.UUID, activityType string, at time.Time) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) WithTx(tx *gorm.DB) ActivityRepository {
	return &activityRepository{db: tx}
}

func (r *activityRepository) Create(ctx context.Context, activity *entity.FitnessActivity) error {
	return r.db.WithContext(ctx).Omit("User").Create(activity).Error
}

func (r *activityRepository) Dates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&entity.FitnessActivity{}).
		Where("user_id = ?", userID).
		Order("date DESC").
		Pluck("date", &dates).Error
	return dates, err
}

func (r *activityRepository) DatesBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&entity.FitnessActivity{}).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Pluck("date", &dates).Error
	return dates, err
}

func (r *activityRepository) HouseDatesBetween(ctx context.Context, houseID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&entity.FitnessActivity{}).
		Joins("JOIN profiles ON profiles.user_id = fitness_activities.user_id").
		Where("profiles.house_id = ?", houseID).
		Where("fitness_activities.date >= ? AND fitness_activities.date <= ?", from, to).
		Pluck("fitness_activities.date", &dates).Error
	return dates, err
}

func (r *activityRepository) List(ctx context.Context, userID uuid.UUID, q dto.PageQuery) ([]entity.FitnessActivity, int64, error) {
	var (
		activities []entity.FitnessActivity
		total      int64
	)

	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&entity.FitnessActivity{}).Where("user_id = ?", userID)
	}
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := scope().
		Order("date DESC, created_at DESC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&activities).Error
	return activities, total, err
}

func (r *activityRepository) CountSince(ctx context.Context, userID uuid.UUID, from time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.FitnessActivity{}).
		Where("user_id = ? AND date >= ?", userID, from).
		Count(&count).Error
	return count, err
}

func (r *activityRepository) Latest(ctx context.Context, userID uuid.UUID) (*entity.FitnessActivity, error) {
	var activity entity.FitnessActivity
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		First(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepository) TypeCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	var rows []struct {
		ActivityType string
		Total        int
	}
	err := r.db.WithContext(ctx).
		Model(&entity.FitnessActivity{}).
		Select("activity_type, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("activity_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[strings.ToLower(strings.TrimSpace(row.ActivityType))] += row.Total
	}
	return counts, nil
}

// CompleteRecommendations closes the user's open recommendation logs that
// suggested the logged activity type.
func (r *activityRepository) CompleteRecommendations(ctx context.Context, userID uuid.UUID, activityType string, at time.Time) (int64, error) {
	act := strings.ToLower(strings.TrimSpace(activityType))
	if act == "" {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&entity.RecommendationLog{}).
		Where("user_id = ? AND is_completed = ? AND LOWER(suggested_activity) = ?", userID, false, act).
		Updates(map[string]any{"is_completed": true, "completed_at": at})
	return res.RowsAffected, res.Error
}

func (r *activityRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.FitnessActivity, error) {
	var activities []entity.FitnessActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
