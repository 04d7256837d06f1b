package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"octofit.app/tracker/internal/entity"
	feedDto "octofit.app/tracker/internal/modules/feed/dto"
	feedRepo "octofit.app/tracker/internal/modules/feed/repository"
	profileRepo "octofit.app/tracker/internal/modules/profile/repository"
	"octofit.app/tracker/pkg/apperror"
	"octofit.app/tracker/pkg/logger"
)

const FeedLimit = 30

// Notifier delivers a user notification without failing the caller.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, message string)
}

type FeedService interface {
	// Record writes a feed item for the user's house. Failures are logged only.
	Record(ctx context.Context, userID uuid.UUID, houseID *uuid.UUID, action, description string)
	GetFeed(ctx context.Context, userID uuid.UUID) ([]feedDto.FeedItemResponse, error)
	AddComment(ctx context.Context, userID, feedItemID uuid.UUID, input feedDto.CreateCommentInput) (*feedDto.CommentResponse, error)
	ListComments(ctx context.Context, feedItemID uuid.UUID) ([]feedDto.CommentResponse, error)
}

type feedService struct {
	repo      feedRepo.FeedRepository
	profiles  profileRepo.ProfileRepository
	notifier  Notifier
	sanitizer *bluemonday.Policy
}

func NewFeedService(repo feedRepo.FeedRepository, profiles profileRepo.ProfileRepository, notifier Notifier) FeedService {
	return &feedService{
		repo:      repo,
		profiles:  profiles,
		notifier:  notifier,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *feedService) Record(ctx context.Context, userID uuid.UUID, houseID *uuid.UUID, action, description string) {
	item := &entity.ActivityFeedItem{
		UserID:      userID,
		HouseID:     houseID,
		Action:      action,
		Description: description,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		logger.L().Warn("record feed item failed",
			zap.String("user_id", userID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (s *feedService) GetFeed(ctx context.Context, userID uuid.UUID) ([]feedDto.FeedItemResponse, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("profile not found")
		}
		return nil, err
	}
	if profile.HouseID == nil {
		return []feedDto.FeedItemResponse{}, nil
	}

	items, err := s.repo.ListByHouse(ctx, *profile.HouseID, FeedLimit)
	if err != nil {
		return nil, err
	}

	res := make([]feedDto.FeedItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, feedDto.FeedItemResponse{
			ID:          item.ID,
			UserID:      item.UserID,
			Username:    item.User.Username,
			Action:      item.Action,
			Description: item.Description,
			CreatedAt:   item.CreatedAt,
		})
	}
	return res, nil
}

func (s *feedService) AddComment(ctx context.Context, userID, feedItemID uuid.UUID, input feedDto.CreateCommentInput) (*feedDto.CommentResponse, error) {
	item, err := s.repo.FindByID(ctx, feedItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("feed item not found")
		}
		return nil, err
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(input.Text))
	if text == "" {
		return nil, apperror.BadRequest("comment text is required")
	}

	comment := &entity.Comment{UserID: userID, FeedItemID: feedItemID, Text: text}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if item.UserID != userID && s.notifier != nil {
		s.notifier.Notify(ctx, item.UserID, entity.NotificationComment, "Someone commented on your activity")
	}

	return &feedDto.CommentResponse{
		ID:        comment.ID,
		UserID:    userID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}, nil
}

func (s *feedService) ListComments(ctx context.Context, feedItemID uuid.UUID) ([]feedDto.CommentResponse, error) {
	comments, err := s.repo.ListComments(ctx, feedItemID)
	if err != nil {
		return nil, err
	}

	res := make([]feedDto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		res = append(res, feedDto.CommentResponse{
			ID:        c.ID,
			UserID:    c.UserID,
			Username:  c.User.Username,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return res, nil
}
