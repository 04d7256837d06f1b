package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
)

type FeedRepository interface {
	Create(ctx context.Context, item *entity.ActivityFeedItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ActivityFeedItem, error)
	ListByHouse(ctx context.Context, houseID uuid.UUID, limit int) ([]entity.ActivityFeedItem, error)

	CreateComment(ctx context.Context, comment *entity.Comment) error
	ListComments(ctx context.Context, feedItemID uuid.UUID) ([]entity.Comment, error)
}

type feedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

func selectUsername(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username")
}

func (r *feedRepository) Create(ctx context.Context, item *entity.ActivityFeedItem) error {
	return r.db.WithContext(ctx).Omit("User").Create(item).Error
}

func (r *feedRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ActivityFeedItem, error) {
	var item entity.ActivityFeedItem
	if err := r.db.WithContext(ctx).
		Preload("User", selectUsername).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *feedRepository) ListByHouse(ctx context.Context, houseID uuid.UUID, limit int) ([]entity.ActivityFeedItem, error) {
	var items []entity.ActivityFeedItem
	err := r.db.WithContext(ctx).
		Preload("User", selectUsername).
		Where("house_id = ?", houseID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *feedRepository) CreateComment(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

func (r *feedRepository) ListComments(ctx context.Context, feedItemID uuid.UUID) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).
		Preload("User", selectUsername).
		Where("feed_item_id = ?", feedItemID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}
