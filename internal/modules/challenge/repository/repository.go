package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"octofit.app/tracker/internal/entity"
)

type ChallengeRepository interface {
	WithTx(tx *gorm.DB) ChallengeRepository
	// Accept inserts the acceptance unless the user already has one for the
	// description, and reports whether a row was created.
	Accept(ctx context.Context, accepted *entity.AcceptedChallenge) (bool, error)
	FindAccepted(ctx context.Context, userID uuid.UUID, description string) (*entity.AcceptedChallenge, error)
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]entity.AcceptedChallenge, error)
	// CompleteOpen sets completed_at on the open acceptance, if any, and
	// reports whether this call completed it.
	CompleteOpen(ctx context.Context, userID uuid.UUID, description string, at time.Time) (bool, error)
	UpdateXP(ctx context.Context, userID uuid.UUID, description string, xp int) error
	CountCompleted(ctx context.Context, userID uuid.UUID) (int64, error)
	CompletedDescriptions(ctx context.Context, userID uuid.UUID) ([]string, error)
	LatestCompleted(ctx context.Context, userID uuid.UUID) (*entity.AcceptedChallenge, error)

	CreateSuggestion(ctx context.Context, suggestion *entity.ChallengeSuggestion) error
	ListSuggestions(ctx context.Context, pendingOnly bool) ([]entity.ChallengeSuggestion, error)
	FindSuggestion(ctx context.Context, id uuid.UUID) (*entity.ChallengeSuggestion, error)
	// ReviewSuggestion records the decision once; a second review is a no-op returning false.
	ReviewSuggestion(ctx context.Context, id uuid.UUID, approved bool) (bool, error)
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) WithTx(tx *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: tx}
}

func (r *challengeRepository) Accept(ctx context.Context, accepted *entity.AcceptedChallenge) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_description"}},
			DoNothing: true,
		}).
		Create(accepted)
	return res.RowsAffected > 0, res.Error
}

func (r *challengeRepository) FindAccepted(ctx context.Context, userID uuid.UUID, description string) (*entity.AcceptedChallenge, error) {
	var accepted entity.AcceptedChallenge
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND challenge_description = ?", userID, description).
		First(&accepted).Error; err != nil {
		return nil, err
	}
	return &accepted, nil
}

func (r *challengeRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]entity.AcceptedChallenge, error) {
	var accepted []entity.AcceptedChallenge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("accepted_at ASC").
		Find(&accepted).Error
	return accepted, err
}

func (r *challengeRepository) CompleteOpen(ctx context.Context, userID uuid.UUID, description string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.AcceptedChallenge{}).
		Where("user_id = ? AND challenge_description = ? AND completed_at IS NULL", userID, description).
		Update("completed_at", at)
	return res.RowsAffected > 0, res.Error
}

func (r *challengeRepository) UpdateXP(ctx context.Context, userID uuid.UUID, description string, xp int) error {
	return r.db.WithContext(ctx).
		Model(&entity.AcceptedChallenge{}).
		Where("user_id = ? AND challenge_description = ?", userID, description).
		Update("xp_points", xp).Error
}

func (r *challengeRepository) CountCompleted(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.AcceptedChallenge{}).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Count(&count).Error
	return count, err
}

func (r *challengeRepository) CompletedDescriptions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var descriptions []string
	err := r.db.WithContext(ctx).
		Model(&entity.AcceptedChallenge{}).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Pluck("challenge_description", &descriptions).Error
	return descriptions, err
}

func (r *challengeRepository) LatestCompleted(ctx context.Context, userID uuid.UUID) (*entity.AcceptedChallenge, error) {
	var accepted entity.AcceptedChallenge
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		First(&accepted).Error; err != nil {
		return nil, err
	}
	return &accepted, nil
}

func (r *challengeRepository) CreateSuggestion(ctx context.Context, suggestion *entity.ChallengeSuggestion) error {
	return r.db.WithContext(ctx).Omit("User", "House").Create(suggestion).Error
}

func (r *challengeRepository) ListSuggestions(ctx context.Context, pendingOnly bool) ([]entity.ChallengeSuggestion, error) {
	query := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Preload("House").
		Order("created_at DESC")
	if pendingOnly {
		query = query.Where("reviewed = ?", false)
	}

	var suggestions []entity.ChallengeSuggestion
	err := query.Find(&suggestions).Error
	return suggestions, err
}

func (r *challengeRepository) FindSuggestion(ctx context.Context, id uuid.UUID) (*entity.ChallengeSuggestion, error) {
	var suggestion entity.ChallengeSuggestion
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&suggestion).Error; err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *challengeRepository) ReviewSuggestion(ctx context.Context, id uuid.UUID, approved bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.ChallengeSuggestion{}).
		Where("id = ? AND reviewed = ?", id, false).
		Updates(map[string]any{"reviewed": true, "approved": approved})
	return res.RowsAffected > 0, res.Error
}
