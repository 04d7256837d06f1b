package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"octofit.app/tracker/internal/entity"
	notifRepo "octofit.app/tracker/internal/modules/notification/repository"
	"octofit.app/tracker/pkg/logger"
)

const UnreadLimit = 20

// Channel is the redis pub/sub channel carrying a user's live notifications.
func Channel(userID uuid.UUID) string {
	return "user_notifications:" + userID.String()
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	// Notify is the fire-and-forget form used after a transaction commits.
	Notify(ctx context.Context, userID uuid.UUID, kind, message string)
	GetUnread(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
				logger.L().Warn("notification publish failed", zap.String("user_id", notification.UserID.String()), zap.Error(err))
			}
		}
	}

	return nil
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, kind, message string) {
	n := &entity.Notification{UserID: userID, Type: kind, Message: message}
	if err := s.CreateNotification(ctx, n); err != nil {
		logger.L().Error("create notification failed",
			zap.String("user_id", userID.String()),
			zap.String("type", kind),
			zap.Error(err),
		)
	}
}

func (s *notificationService) GetUnread(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	return s.repo.ListUnread(ctx, userID, UnreadLimit)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return s.repo.MarkAllAsRead(ctx, userID)
	}
	return s.repo.MarkAsRead(ctx, userID, ids)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
