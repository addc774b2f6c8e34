package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"mymemorycard.com/backend/internal/entity"
	commentDto "mymemorycard.com/backend/internal/modules/comment/dto"
	commentRepo "mymemorycard.com/backend/internal/modules/comment/repository"
	notifService "mymemorycard.com/backend/internal/modules/notification/service"
	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/dto"
	"mymemorycard.com/backend/pkg/ratelimiter"
	"mymemorycard.com/backend/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	maxCommentLength = 2000

	MsgMissingFields    = "targetType, targetId et content sont requis"
	MsgEmptyComment     = "Le commentaire ne peut pas être vide"
	MsgCommentTooLong   = "Le commentaire ne doit pas dépasser 2000 caractères"
	MsgTargetNotFound   = "Contenu introuvable"
	MsgCommentNotOwned  = "Commentaire non trouvé ou vous n'êtes pas l'auteur"
	MsgCommentNotFound  = "Commentaire non trouvé"
	rateLimitActionName = "create_comment"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID uuid.UUID, input commentDto.CreateCommentInput) (*commentDto.CommentResponse, error)
	GetComments(ctx context.Context, targetType, targetID string) ([]commentDto.CommentResponse, error)
	UpdateComment(ctx context.Context, userID, id uuid.UUID, input commentDto.UpdateCommentInput) (*commentDto.CommentResponse, error)
	DeleteComment(ctx context.Context, userID, id uuid.UUID) error
}

type commentService struct {
	repo                commentRepo.CommentRepository
	notificationService notifService.NotificationService
	redisClient         *redis.Client
	cooldown            time.Duration
}

func NewCommentService(repo commentRepo.CommentRepository, notificationService notifService.NotificationService, redisClient *redis.Client, cooldown time.Duration) CommentService {
	return &commentService{
		repo:                repo,
		notificationService: notificationService,
		redisClient:         redisClient,
		cooldown:            cooldown,
	}
}

func cleanComment(raw string) (string, error) {
	content := sanitize.Text(raw)
	if content == "" {
		return "", apperror.BadRequest(MsgEmptyComment)
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return "", apperror.BadRequest(MsgCommentTooLong)
	}
	return content, nil
}

func (s *commentService) CreateComment(ctx context.Context, userID uuid.UUID, input commentDto.CreateCommentInput) (*commentDto.CommentResponse, error) {
	if input.TargetType == "" || input.TargetID == "" || input.Content == "" {
		return nil, apperror.BadRequest(MsgMissingFields)
	}
	targetType, targetID, err := dto.ParseTarget(input.TargetType, input.TargetID)
	if err != nil {
		return nil, err
	}
	content, err := cleanComment(input.Content)
	if err != nil {
		return nil, err
	}

	authorID, err := s.repo.TargetAuthor(ctx, targetType, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(MsgTargetNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := ratelimiter.Guard(ctx, s.redisClient, userID, rateLimitActionName, s.cooldown); err != nil {
		return nil, err
	}
	// release the cooldown when nothing was written
	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, rateLimitActionName)
		}
	}()

	comment := &entity.Comment{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
		Content:    content,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	creationFailed = false

	stored, err := s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		what := "votre souvenir"
		if targetType == entity.TargetReview {
			what = "votre review"
		}
		s.notificationService.NotifyAsync(&entity.Notification{
			UserID:     authorID,
			ActorID:    userID,
			EntityID:   targetID,
			EntityType: targetType,
			Type:       entity.NotificationComment,
			Message:    fmt.Sprintf("%s a commenté %s", stored.User.Username, what),
		})
	}

	res := toResponse(*stored)
	return &res, nil
}

func (s *commentService) GetComments(ctx context.Context, targetType, targetID string) ([]commentDto.CommentResponse, error) {
	kind, id, err := dto.ParseTarget(targetType, targetID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.FindByTarget(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	result := make([]commentDto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		result = append(result, toResponse(c))
	}
	return result, nil
}

func (s *commentService) UpdateComment(ctx context.Context, userID, id uuid.UUID, input commentDto.UpdateCommentInput) (*commentDto.CommentResponse, error) {
	content, err := cleanComment(input.Content)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateContent(ctx, id, userID, content)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperror.NotFound(MsgCommentNotOwned)
	}

	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toResponse(*stored)
	return &res, nil
}

func (s *commentService) DeleteComment(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id, &userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgCommentNotOwned)
	}
	return nil
}

func toResponse(c entity.Comment) commentDto.CommentResponse {
	res := commentDto.CommentResponse{
		ID:         c.ID,
		TargetType: c.TargetType,
		TargetID:   c.TargetID,
		Content:    c.Content,
		Author:     dto.AuthorResponse{ID: c.UserID, Username: "Unknown"},
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.User != nil {
		res.Author.Username = c.User.Username
		res.Author.AvatarURL = c.User.AvatarURL
		res.Author.Level = c.User.Level
	}
	return res
}
