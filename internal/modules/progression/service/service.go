package service

import (
	"context"
	"fmt"
	"time"

	"mymemorycard.com/backend/internal/entity"
	notifService "mymemorycard.com/backend/internal/modules/notification/service"
	progressionDto "mymemorycard.com/backend/internal/modules/progression/dto"
	progressionRepo "mymemorycard.com/backend/internal/modules/progression/repository"
	"mymemorycard.com/backend/pkg/dto"
	"mymemorycard.com/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// MaxApplyAttempts stops the worker from retrying a poisoned event forever.
	MaxApplyAttempts = 20
	pendingBatchSize = 100
)

type ProgressionService interface {
	// NewEvent builds the outbox row for an action; the caller commits it with the content.
	NewEvent(userID uuid.UUID, action string, referenceID uuid.UUID) (*entity.XPEvent, error)
	// ApplyNow applies a committed event. Failures are logged and left to the worker.
	ApplyNow(ctx context.Context, eventID uuid.UUID)
	ProcessPending(ctx context.Context) int
	StartWorker(ctx context.Context, interval time.Duration)
	GetLeaderboard(ctx context.Context, limit int) ([]progressionDto.LeaderboardEntry, error)
}

type progressionService struct {
	repo                progressionRepo.ProgressionRepository
	notificationService notifService.NotificationService
	log                 logrus.FieldLogger
}

func NewProgressionService(repo progressionRepo.ProgressionRepository, notificationService notifService.NotificationService) ProgressionService {
	return &progressionService{
		repo:                repo,
		notificationService: notificationService,
		log:                 logger.Log.WithField("component", "progression"),
	}
}

func (s *progressionService) NewEvent(userID uuid.UUID, action string, referenceID uuid.UUID) (*entity.XPEvent, error) {
	amount, ok := RewardFor(action)
	if !ok {
		return nil, fmt.Errorf("no experience reward for action %q", action)
	}
	return &entity.XPEvent{
		UserID:      userID,
		Action:      action,
		ReferenceID: referenceID,
		Amount:      amount,
	}, nil
}

func (s *progressionService) ApplyNow(ctx context.Context, eventID uuid.UUID) {
	if err := s.apply(ctx, eventID); err != nil {
		s.log.WithError(err).WithField("event_id", eventID).Warn("xp grant deferred to worker")
	}
}

func (s *progressionService) apply(ctx context.Context, eventID uuid.UUID) error {
	result, err := s.repo.ApplyEvent(ctx, eventID, CalculateLevel)
	if err != nil {
		if recErr := s.repo.RecordFailure(ctx, eventID, err); recErr != nil {
			s.log.WithError(recErr).WithField("event_id", eventID).Error("failed to record xp failure")
		}
		return err
	}

	if result.Applied && result.NewLevel > result.PreviousLevel {
		s.sendLevelUpNotification(result)
	}
	return nil
}

// sendLevelUpNotification notifies the user of a new level
func (s *progressionService) sendLevelUpNotification(result *progressionRepo.ApplyResult) {
	if s.notificationService == nil {
		return
	}

	s.notificationService.NotifyAsync(&entity.Notification{
		UserID:     result.UserID,
		ActorID:    result.UserID, // Self-triggered
		EntityID:   result.UserID,
		EntityType: "user",
		Type:       entity.NotificationLevelUp,
		Message:    fmt.Sprintf("Félicitations ! Vous passez au niveau %d avec %d XP.", result.NewLevel, result.Exp),
	})
}

// ProcessPending retries every unapplied event once and returns how many were applied.
func (s *progressionService) ProcessPending(ctx context.Context) int {
	events, err := s.repo.ListPending(ctx, MaxApplyAttempts, pendingBatchSize)
	if err != nil {
		s.log.WithError(err).Error("failed to list pending xp events")
		return 0
	}

	applied := 0
	for _, event := range events {
		if err := s.apply(ctx, event.ID); err != nil {
			s.log.WithError(err).
				WithFields(logrus.Fields{"event_id": event.ID, "attempts": event.Attempts + 1}).
				Warn("xp event retry failed")
			continue
		}
		applied++
	}

	if applied > 0 {
		s.log.WithField("count", applied).Info("applied pending xp events")
	}
	return applied
}

func (s *progressionService) StartWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.ProcessPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *progressionService) GetLeaderboard(ctx context.Context, limit int) ([]progressionDto.LeaderboardEntry, error) {
	users, err := s.repo.GetTopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]progressionDto.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, progressionDto.LeaderboardEntry{
			Position: i + 1,
			User: dto.AuthorResponse{
				ID:        u.ID,
				Username:  u.Username,
				AvatarURL: u.AvatarURL,
				Level:     u.Level,
			},
			LevelStatus: GetLevelStatus(u.Exp),
		})
	}

	return entries, nil
}
