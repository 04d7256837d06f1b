package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	feedRepo "octofit.app/tracker/internal/modules/feed/repository"
	reactionDto "octofit.app/tracker/internal/modules/reaction/dto"
	reactionRepo "octofit.app/tracker/internal/modules/reaction/repository"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/logger"
)

const countsTTL = 7 * 24 * time.Hour

// CountsKey is the redis hash holding per-emoji counts of a feed item.
func CountsKey(feedItemID uuid.UUID) string {
	return "feed_reactions:" + feedItemID.String()
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, message string)
}

type ReactionService interface {
	React(ctx context.Context, userID, feedItemID uuid.UUID, input reactionDto.ReactInput) (*reactionDto.ReactResult, error)
	GetReactions(ctx context.Context, feedItemID uuid.UUID) (*reactionDto.ReactionsResponse, error)
}

type reactionService struct {
	repo        reactionRepo.ReactionRepository
	feed        feedRepo.FeedRepository
	redisClient *redis.Client
	notifier    Notifier
}

func NewReactionService(repo reactionRepo.ReactionRepository, feed feedRepo.FeedRepository, redisClient *redis.Client, notifier Notifier) ReactionService {
	return &reactionService{
		repo:        repo,
		feed:        feed,
		redisClient: redisClient,
		notifier:    notifier,
	}
}

func (s *reactionService) React(ctx context.Context, userID, feedItemID uuid.UUID, input reactionDto.ReactInput) (*reactionDto.ReactResult, error) {
	emoji := strings.TrimSpace(input.Emoji)
	if emoji == "" {
		return nil, apperror.BadRequest("emoji is required")
	}

	item, err := s.feed.FindByID(ctx, feedItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("feed item not found")
		}
		return nil, err
	}

	created, err := s.repo.Add(ctx, &entity.Reaction{UserID: userID, FeedItemID: feedItemID, Emoji: emoji})
	if err != nil {
		return nil, fmt.Errorf("add reaction: %w", err)
	}

	if created {
		// A missing hash is rebuilt from the database on the next read.
		if s.redisClient != nil {
			key := CountsKey(feedItemID)
			if n, _ := s.redisClient.Exists(ctx, key).Result(); n > 0 {
				pipe := s.redisClient.Pipeline()
				pipe.HIncrBy(ctx, key, emoji, 1)
				pipe.Expire(ctx, key, countsTTL)
				if _, err := pipe.Exec(ctx); err != nil {
					logger.L().Warn("reaction count update failed", zap.String("feed_item_id", feedItemID.String()), zap.Error(err))
				}
			}
		}

		if item.UserID != userID && s.notifier != nil {
			s.notifier.Notify(ctx, item.UserID, entity.NotificationReaction, fmt.Sprintf("Someone reacted with %s to your activity", emoji))
		}
	}

	counts, err := s.counts(ctx, feedItemID)
	if err != nil {
		return nil, err
	}
	return &reactionDto.ReactResult{Created: created, Counts: counts}, nil
}

func (s *reactionService) GetReactions(ctx context.Context, feedItemID uuid.UUID) (*reactionDto.ReactionsResponse, error) {
	reactions, err := s.repo.ListByFeedItem(ctx, feedItemID)
	if err != nil {
		return nil, err
	}

	counts, err := s.counts(ctx, feedItemID)
	if err != nil {
		return nil, err
	}

	list := make([]reactionDto.ReactionResponse, 0, len(reactions))
	for _, r := range reactions {
		list = append(list, reactionDto.ReactionResponse{
			UserID:    r.UserID,
			Username:  r.User.Username,
			Emoji:     r.Emoji,
			CreatedAt: r.CreatedAt,
		})
	}
	return &reactionDto.ReactionsResponse{Reactions: list, Counts: counts}, nil
}

// counts reads the redis hash, rebuilding it from the database on a miss.
func (s *reactionService) counts(ctx context.Context, feedItemID uuid.UUID) (map[string]int64, error) {
	key := CountsKey(feedItemID)

	if s.redisClient != nil {
		val, err := s.redisClient.HGetAll(ctx, key).Result()
		if err == nil && len(val) > 0 {
			counts := make(map[string]int64, len(val))
			for emoji, v := range val {
				if n, _ := strconv.ParseInt(v, 10, 64); n > 0 {
					counts[emoji] = n
				}
			}
			return counts, nil
		}
	}

	counts, err := s.repo.GetReactionsCount(ctx, feedItemID)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil && len(counts) > 0 {
		pipe := s.redisClient.Pipeline()
		pipe.Del(ctx, key)
		for emoji, n := range counts {
			pipe.HSet(ctx, key, emoji, n)
		}
		pipe.Expire(ctx, key, countsTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.L().Warn("reaction count rebuild failed", zap.String("feed_item_id", feedItemID.String()), zap.Error(err))
		}
	}
	return counts, nil
}
