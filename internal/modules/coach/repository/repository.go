package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
)

type CoachRepository interface {
	CreateMessage(ctx context.Context, msg *entity.CoachChatHistory) error
	LastBotMessage(ctx context.Context, userID uuid.UUID) (*entity.CoachChatHistory, error)
	// History returns the newest limit messages, newest first.
	History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.CoachChatHistory, error)
	CreateRecommendations(ctx context.Context, logs []entity.RecommendationLog) error
}

type coachRepository struct {
	db *gorm.DB
}

func NewCoachRepository(db *gorm.DB) CoachRepository {
	return &coachRepository{db: db}
}

func (r *coachRepository) CreateMessage(ctx context.Context, msg *entity.CoachChatHistory) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *coachRepository) LastBotMessage(ctx context.Context, userID uuid.UUID) (*entity.CoachChatHistory, error) {
	var msg entity.CoachChatHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND sender = ?", userID, entity.SenderBot).
		Order("created_at DESC").
		First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *coachRepository) History(ctx context.Context, userID uuid.UUID, limit int) ([]entity.CoachChatHistory, error) {
	var msgs []entity.CoachChatHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (r *coachRepository) CreateRecommendations(ctx context.Context, logs []entity.RecommendationLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}
