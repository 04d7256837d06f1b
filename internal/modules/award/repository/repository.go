package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"octofit.app/tracker/internal/entity"
)

type AwardRepository interface {
	WithTx(tx *gorm.DB) AwardRepository
	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error)
	EarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
	// GrantBadges inserts the missing (user, badge) pairs and returns the ids granted by this call.
	GrantBadges(ctx context.Context, userID uuid.UUID, badgeIDs []uuid.UUID) ([]uuid.UUID, error)
	LatestBadge(ctx context.Context, userID uuid.UUID) (*entity.UserBadge, error)

	ListRewards(ctx context.Context) ([]entity.Reward, error)
	CreateReward(ctx context.Context, reward *entity.Reward) error
	UnlockedRewardIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
	// GrantRewards inserts the missing (user, reward) pairs and returns the ids granted by this call.
	GrantRewards(ctx context.Context, userID uuid.UUID, rewardIDs []uuid.UUID) ([]uuid.UUID, error)
}

type awardRepository struct {
	db *gorm.DB
}

func NewAwardRepository(db *gorm.DB) AwardRepository {
	return &awardRepository{db: db}
}

func (r *awardRepository) WithTx(tx *gorm.DB) AwardRepository {
	return &awardRepository{db: tx}
}

func (r *awardRepository) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	var badges []entity.UserBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&badges).Error
	return badges, err
}

func (r *awardRepository) EarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entity.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error; err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func (r *awardRepository) GrantBadges(ctx context.Context, userID uuid.UUID, badgeIDs []uuid.UUID) ([]uuid.UUID, error) {
	var granted []uuid.UUID
	for _, id := range badgeIDs {
		res := r.db.WithContext(ctx).
			Omit("Badge").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
				DoNothing: true,
			}).
			Create(&entity.UserBadge{UserID: userID, BadgeID: id})
		if res.Error != nil {
			return granted, res.Error
		}
		if res.RowsAffected > 0 {
			granted = append(granted, id)
		}
	}
	return granted, nil
}

func (r *awardRepository) LatestBadge(ctx context.Context, userID uuid.UUID) (*entity.UserBadge, error) {
	var badge entity.UserBadge
	if err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *awardRepository) ListRewards(ctx context.Context) ([]entity.Reward, error) {
	var rewards []entity.Reward
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rewards).Error
	return rewards, err
}

func (r *awardRepository) CreateReward(ctx context.Context, reward *entity.Reward) error {
	return r.db.WithContext(ctx).Create(reward).Error
}

func (r *awardRepository) UnlockedRewardIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entity.UserReward{}).
		Where("user_id = ?", userID).
		Pluck("reward_id", &ids).Error; err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func (r *awardRepository) GrantRewards(ctx context.Context, userID uuid.UUID, rewardIDs []uuid.UUID) ([]uuid.UUID, error) {
	var granted []uuid.UUID
	for _, id := range rewardIDs {
		res := r.db.WithContext(ctx).
			Omit("Reward").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "reward_id"}},
				DoNothing: true,
			}).
			Create(&entity.UserReward{UserID: userID, RewardID: id})
		if res.Error != nil {
			return granted, res.Error
		}
		if res.RowsAffected > 0 {
			granted = append(granted, id)
		}
	}
	return granted, nil
}

func toSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
