package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"octofit.app/tracker/internal/entity"
)

type ProfileRepository interface {
	WithTx(tx *gorm.DB) ProfileRepository
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	// LockByUserID reads the profile under a row lock; only meaningful inside a transaction.
	LockByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, fields map[string]any) error
	SetStreak(ctx context.Context, userID uuid.UUID, streak int, firstActivityAt *time.Time) error
	// AdvanceMilestone raises last_streak_milestone to milestone and reports
	// whether this call did it.
	AdvanceMilestone(ctx context.Context, userID uuid.UUID, milestone int) (bool, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) WithTx(tx *gorm.DB) ProfileRepository {
	return &profileRepository{db: tx}
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).
		Preload("House").
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) LockByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, userID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}

func (r *profileRepository) SetStreak(ctx context.Context, userID uuid.UUID, streak int, firstActivityAt *time.Time) error {
	fields := map[string]any{"streak_count": streak}
	if firstActivityAt != nil {
		fields["first_activity_logged_at"] = gorm.Expr("COALESCE(first_activity_logged_at, ?)", *firstActivityAt)
	}
	return r.Update(ctx, userID, fields)
}

func (r *profileRepository) AdvanceMilestone(ctx context.Context, userID uuid.UUID, milestone int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("user_id = ? AND last_streak_milestone < ?", userID, milestone).
		Update("last_streak_milestone", milestone)
	return res.RowsAffected > 0, res.Error
}
