package service

import (
	"context"
	"errors"
	"fmt"

	"mymemorycard.com/backend/internal/entity"
	followDto "mymemorycard.com/backend/internal/modules/follow/dto"
	followRepo "mymemorycard.com/backend/internal/modules/follow/repository"
	notifService "mymemorycard.com/backend/internal/modules/notification/service"
	userRepo "mymemorycard.com/backend/internal/modules/user/repository"
	"mymemorycard.com/backend/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgFollowSelf      = "Vous ne pouvez pas vous suivre vous-même"
	MsgUserNotFound    = "Utilisateur introuvable"
	MsgAlreadyFollowed = "Vous suivez déjà cet utilisateur"
	MsgNotFollowing    = "Vous ne suivez pas cet utilisateur"
)

type FollowService interface {
	Follow(ctx context.Context, followerID, followingID uuid.UUID) (*entity.Follow, error)
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	GetFollowers(ctx context.Context, userID uuid.UUID) ([]followDto.FollowUser, error)
	GetFollowing(ctx context.Context, userID uuid.UUID) ([]followDto.FollowUser, error)
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
}

type followService struct {
	repo                followRepo.FollowRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
}

func NewFollowService(repo followRepo.FollowRepository, userRepo userRepo.UserRepository, notificationService notifService.NotificationService) FollowService {
	return &followService{
		repo:                repo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

func (s *followService) Follow(ctx context.Context, followerID, followingID uuid.UUID) (*entity.Follow, error) {
	if followerID == followingID {
		return nil, apperror.BadRequest(MsgFollowSelf)
	}
	if err := s.ensureUser(ctx, followingID); err != nil {
		return nil, err
	}

	follow := &entity.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := s.repo.Create(ctx, follow); err != nil {
		if apperror.IsDuplicate(err) {
			return nil, apperror.Conflict(MsgAlreadyFollowed)
		}
		return nil, err
	}

	if s.notificationService != nil {
		name := "Quelqu'un"
		if follower, err := s.userRepo.FindByID(ctx, followerID); err == nil {
			name = follower.Username
		}
		s.notificationService.NotifyAsync(&entity.Notification{
			UserID:     followingID,
			ActorID:    followerID,
			EntityID:   followerID,
			EntityType: "user",
			Type:       entity.NotificationFollow,
			Message:    fmt.Sprintf("%s a commencé à vous suivre", name),
		})
	}

	return follow, nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgNotFollowing)
	}
	return nil
}

func (s *followService) GetFollowers(ctx context.Context, userID uuid.UUID) ([]followDto.FollowUser, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.Followers(ctx, userID)
}

func (s *followService) GetFollowing(ctx context.Context, userID uuid.UUID) ([]followDto.FollowUser, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.Following(ctx, userID)
}

func (s *followService) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, followerID, followingID)
}

func (s *followService) ensureUser(ctx context.Context, id uuid.UUID) error {
	_, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(MsgUserNotFound)
	}
	return err
}
