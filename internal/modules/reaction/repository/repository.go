package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"octofit.app/tracker/internal/entity"
)

type ReactionRepository interface {
	// Add inserts the reaction unless the user already reacted with that emoji,
	// and reports whether a row was created.
	Add(ctx context.Context, reaction *entity.Reaction) (bool, error)
	ListByFeedItem(ctx context.Context, feedItemID uuid.UUID) ([]entity.Reaction, error)
	GetReactionsCount(ctx context.Context, feedItemID uuid.UUID) (map[string]int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Add(ctx context.Context, reaction *entity.Reaction) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "feed_item_id"}, {Name: "emoji"}},
			DoNothing: true,
		}).
		Create(reaction)
	return res.RowsAffected > 0, res.Error
}

func (r *reactionRepository) ListByFeedItem(ctx context.Context, feedItemID uuid.UUID) ([]entity.Reaction, error) {
	var reactions []entity.Reaction
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Where("feed_item_id = ?", feedItemID).
		Order("created_at ASC, id ASC").
		Find(&reactions).Error
	return reactions, err
}

func (r *reactionRepository) GetReactionsCount(ctx context.Context, feedItemID uuid.UUID) (map[string]int64, error) {
	type Result struct {
		Emoji string
		Count int64
	}
	var results []Result

	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Select("emoji, count(*) as count").
		Where("feed_item_id = ?", feedItemID).
		Group("emoji").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(results))
	for _, res := range results {
		counts[res.Emoji] = res.Count
	}
	return counts, nil
}
