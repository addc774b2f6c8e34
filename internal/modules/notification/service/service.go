package service

import (
	"context"
	"encoding/json"
	"fmt"

	"mymemorycard.com/backend/internal/entity"
	notifRepo "mymemorycard.com/backend/internal/modules/notification/repository"
	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	// NotifyAsync creates the notification in the background, skipping self-notifications.
	NotifyAsync(notification *entity.Notification)
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
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

// Channel is the Redis pub/sub channel carrying a user's live notifications.
func Channel(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	// 1. Save to DB
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	// 2. Publish to Redis if Redis is available
	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			if err := s.redisClient.Publish(ctx, Channel(notification.UserID.String()), payload).Err(); err != nil {
				logger.Log.WithError(err).WithField("user_id", notification.UserID).Warn("failed to publish notification")
			}
		}
	}

	return nil
}

func (s *notificationService) NotifyAsync(notification *entity.Notification) {
	if notification.UserID == notification.ActorID && notification.Type != entity.NotificationLevelUp {
		return
	}

	go func() {
		if err := s.CreateNotification(context.Background(), notification); err != nil {
			logger.Log.WithError(err).
				WithField("user_id", notification.UserID).
				WithField("type", notification.Type).
				Error("failed to create notification")
		}
	}()
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("Notification non trouvée")
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
