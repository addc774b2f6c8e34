package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mymemorycard.com/backend/internal/entity"
	likeDto "mymemorycard.com/backend/internal/modules/like/dto"
	likeRepo "mymemorycard.com/backend/internal/modules/like/repository"
	notifService "mymemorycard.com/backend/internal/modules/notification/service"
	userRepo "mymemorycard.com/backend/internal/modules/user/repository"
	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/dto"
	"mymemorycard.com/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	counterTTL = 7 * 24 * time.Hour

	MsgMissingFields  = "targetType et targetId sont requis"
	MsgTargetNotFound = "Contenu introuvable"
	MsgAlreadyLiked   = "Vous avez déjà liké ce contenu"
	MsgLikeNotFound   = "Like non trouvé"
)

// adjust only touches counters that are already cached, a missing key is rebuilt from the DB on read
var adjustCounter = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("INCRBY", KEYS[1], ARGV[1])
end
return false
`)

type LikeService interface {
	Like(ctx context.Context, userID uuid.UUID, input likeDto.LikeInput) (*entity.Like, error)
	Unlike(ctx context.Context, userID uuid.UUID, input likeDto.LikeInput) error
	Toggle(ctx context.Context, userID uuid.UUID, input likeDto.LikeInput) (*likeDto.ToggleResponse, error)
	GetLikes(ctx context.Context, targetType, targetID string) (int64, []likeDto.LikeResponse, error)
	HasLiked(ctx context.Context, userID uuid.UUID, targetType, targetID string) (bool, error)
	Count(ctx context.Context, targetType string, targetID uuid.UUID) (int64, error)
	// ForgetCounts drops cached counters after likes were removed outside this service.
	ForgetCounts(ctx context.Context, targetType string, targetIDs ...uuid.UUID)
}

type likeService struct {
	repo                likeRepo.LikeRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
	redisClient         *redis.Client
}

func NewLikeService(repo likeRepo.LikeRepository, userRepo userRepo.UserRepository, notificationService notifService.NotificationService, redisClient *redis.Client) LikeService {
	return &likeService{
		repo:                repo,
		userRepo:            userRepo,
		notificationService: notificationService,
		redisClient:         redisClient,
	}
}

func counterKey(targetType string, targetID uuid.UUID) string {
	return fmt.Sprintf("likes:count:%s:%s", targetType, targetID.String())
}

// target validates the reference and returns the author of the liked content.
func (s *likeService) target(ctx context.Context, input likeDto.LikeInput) (string, uuid.UUID, uuid.UUID, error) {
	if input.TargetType == "" || input.TargetID == "" {
		return "", uuid.Nil, uuid.Nil, apperror.BadRequest(MsgMissingFields)
	}
	targetType, targetID, err := dto.ParseTarget(input.TargetType, input.TargetID)
	if err != nil {
		return "", uuid.Nil, uuid.Nil, err
	}

	authorID, err := s.repo.TargetAuthor(ctx, targetType, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", uuid.Nil, uuid.Nil, apperror.NotFound(MsgTargetNotFound)
	}
	if err != nil {
		return "", uuid.Nil, uuid.Nil, err
	}
	return targetType, targetID, authorID, nil
}

func (s *likeService) Like(ctx context.Context, userID uuid.UUID, input likeDto.LikeInput) (*entity.Like, error) {
	targetType, targetID, authorID, err := s.target(ctx, input)
	if err != nil {
		return nil, err
	}

	like, err := s.create(ctx, userID, targetType, targetID)
	if err != nil {
		return nil, err
	}
	s.notify(userID, authorID, targetType, targetID)
	return like, nil
}

func (s *likeService) create(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (*entity.Like, error) {
	like := &entity.Like{UserID: userID, TargetType: targetType, TargetID: targetID}
	if err := s.repo.Create(ctx, like); err != nil {
		if apperror.IsDuplicate(err) {
			return nil, apperror.Conflict(MsgAlreadyLiked)
		}
		return nil, err
	}
	s.adjust(ctx, targetType, targetID, 1)
	return like, nil
}

func (s *likeService) Unlike(ctx context.Context, userID uuid.UUID, input likeDto.LikeInput) error {
	if input.TargetType == "" || input.TargetID == "" {
		return apperror.BadRequest(MsgMissingFields)
	}
	targetType, targetID, err := dto.ParseTarget(input.TargetType, input.TargetID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, userID, targetType, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgLikeNotFound)
	}
	s.adjust(ctx, targetType, targetID, -1)
	return nil
}

func (s *likeService) Toggle(ctx context.Context, userID uuid.UUID, input likeDto.LikeInput) (*likeDto.ToggleResponse, error) {
	targetType, targetID, authorID, err := s.target(ctx, input)
	if err != nil {
		return nil, err
	}

	liked, err := s.repo.Exists(ctx, userID, targetType, targetID)
	if err != nil {
		return nil, err
	}

	if liked {
		deleted, err := s.repo.Delete(ctx, userID, targetType, targetID)
		if err != nil {
			return nil, err
		}
		if deleted {
			s.adjust(ctx, targetType, targetID, -1)
		}
	} else {
		_, err := s.create(ctx, userID, targetType, targetID)
		switch {
		case err == nil:
			s.notify(userID, authorID, targetType, targetID)
		case errors.Is(err, apperror.ErrConflict):
			// a concurrent toggle already liked it
		default:
			return nil, err
		}
	}

	count, err := s.Count(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	return &likeDto.ToggleResponse{Liked: !liked, LikesCount: count}, nil
}

func (s *likeService) GetLikes(ctx context.Context, targetType, targetID string) (int64, []likeDto.LikeResponse, error) {
	kind, id, err := dto.ParseTarget(targetType, targetID)
	if err != nil {
		return 0, nil, err
	}

	likes, err := s.repo.ListByTarget(ctx, kind, id)
	if err != nil {
		return 0, nil, err
	}
	count, err := s.Count(ctx, kind, id)
	if err != nil {
		return 0, nil, err
	}

	result := make([]likeDto.LikeResponse, 0, len(likes))
	for _, like := range likes {
		res := likeDto.LikeResponse{
			ID:         like.ID,
			UserID:     like.UserID,
			TargetType: like.TargetType,
			TargetID:   like.TargetID,
			CreatedAt:  like.CreatedAt,
		}
		if like.User != nil {
			res.Username = like.User.Username
			res.AvatarURL = like.User.AvatarURL
		}
		result = append(result, res)
	}
	return count, result, nil
}

func (s *likeService) HasLiked(ctx context.Context, userID uuid.UUID, targetType, targetID string) (bool, error) {
	kind, id, err := dto.ParseTarget(targetType, targetID)
	if err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, userID, kind, id)
}

// Count reads the cached counter, rebuilding it from the DB on a miss.
func (s *likeService) Count(ctx context.Context, targetType string, targetID uuid.UUID) (int64, error) {
	key := counterKey(targetType, targetID)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, key).Int64(); err == nil && cached >= 0 {
			return cached, nil
		}
	}

	count, err := s.repo.Count(ctx, targetType, targetID)
	if err != nil {
		return 0, err
	}

	if s.redisClient != nil {
		if err := s.redisClient.Set(ctx, key, count, counterTTL).Err(); err != nil {
			logger.Log.WithError(err).WithField("key", key).Warn("failed to cache like count")
		}
	}
	return count, nil
}

func (s *likeService) ForgetCounts(ctx context.Context, targetType string, targetIDs ...uuid.UUID) {
	if s.redisClient == nil || len(targetIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(targetIDs))
	for _, id := range targetIDs {
		keys = append(keys, counterKey(targetType, id))
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).WithField("keys", len(keys)).Warn("failed to drop like counters")
	}
}

func (s *likeService) adjust(ctx context.Context, targetType string, targetID uuid.UUID, delta int64) {
	if s.redisClient == nil {
		return
	}
	key := counterKey(targetType, targetID)
	if err := adjustCounter.Run(ctx, s.redisClient, []string{key}, delta).Err(); err != nil && !errors.Is(err, redis.Nil) {
		// DB is the source of truth, drop the counter so the next read rebuilds it
		logger.Log.WithError(err).WithField("key", key).Warn("like counter update failed")
		s.redisClient.Del(ctx, key)
	}
}

func (s *likeService) notify(actorID, authorID uuid.UUID, targetType string, targetID uuid.UUID) {
	if s.notificationService == nil || actorID == authorID {
		return
	}

	name := "Quelqu'un"
	if actor, err := s.userRepo.FindByID(context.Background(), actorID); err == nil {
		name = actor.Username
	}
	what := "votre souvenir"
	if targetType == entity.TargetReview {
		what = "votre review"
	}

	s.notificationService.NotifyAsync(&entity.Notification{
		UserID:     authorID,
		ActorID:    actorID,
		EntityID:   targetID,
		EntityType: targetType,
		Type:       entity.NotificationLike,
		Message:    fmt.Sprintf("%s a aimé %s", name, what),
	})
}
