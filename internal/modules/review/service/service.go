package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"mymemorycard.com/backend/internal/entity"
	gameRepo "mymemorycard.com/backend/internal/modules/game/repository"
	gameService "mymemorycard.com/backend/internal/modules/game/service"
	progressionService "mymemorycard.com/backend/internal/modules/progression/service"
	reviewDto "mymemorycard.com/backend/internal/modules/review/dto"
	reviewRepo "mymemorycard.com/backend/internal/modules/review/repository"
	searchDto "mymemorycard.com/backend/internal/modules/search/dto"
	searchService "mymemorycard.com/backend/internal/modules/search/service"
	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/dto"
	"mymemorycard.com/backend/pkg/ratelimiter"
	"mymemorycard.com/backend/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000

	MsgReviewNotFound  = "Review introuvable"
	MsgAlreadyReviewed = "Vous avez déjà publié une review pour ce jeu"
	MsgMissingFields   = "gameId, rating, title et content sont requis"
	MsgRatingRange     = "La note doit être entre 1 et 5"
	MsgEmptyTitle      = "Le titre ne peut pas être vide"
	MsgEmptyContent    = "Le contenu ne peut pas être vide"
	MsgTitleTooLong    = "Le titre ne doit pas dépasser 200 caractères"
	MsgContentTooLong  = "Le contenu ne doit pas dépasser 10000 caractères"
	MsgNothingToUpdate = "Au moins un champ (rating, title, content ou spoiler) est requis"
	MsgForbiddenUpdate = "Vous n'êtes pas autorisé à modifier cette review"
	MsgForbiddenDelete = "Vous n'êtes pas autorisé à supprimer cette review"
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID uuid.UUID, input reviewDto.CreateReviewInput) (*reviewDto.ReviewResponse, error)
	GetReviews(ctx context.Context, query dto.FeedQuery) ([]reviewDto.ReviewResponse, error)
	GetReview(ctx context.Context, id uuid.UUID) (*reviewDto.ReviewResponse, error)
	GetGameReviews(ctx context.Context, rawgID int, query dto.FeedQuery) ([]reviewDto.ReviewResponse, error)
	GetUserReviews(ctx context.Context, userID uuid.UUID, query dto.FeedQuery) ([]reviewDto.ReviewResponse, error)
	UpdateReview(ctx context.Context, userID, id uuid.UUID, input reviewDto.UpdateReviewInput) (*reviewDto.ReviewResponse, error)
	DeleteReview(ctx context.Context, userID, id uuid.UUID) error
}

type reviewService struct {
	repo               reviewRepo.ReviewRepository
	gameRepo           gameRepo.GameRepository
	gameService        gameService.GameService
	progressionService progressionService.ProgressionService
	searchService      searchService.SearchService
	redisClient        *redis.Client
	cooldown           time.Duration
}

func NewReviewService(
	repo reviewRepo.ReviewRepository,
	gameRepo gameRepo.GameRepository,
	gameService gameService.GameService,
	progressionService progressionService.ProgressionService,
	searchService searchService.SearchService,
	redisClient *redis.Client,
	cooldown time.Duration,
) ReviewService {
	return &reviewService{
		repo:               repo,
		gameRepo:           gameRepo,
		gameService:        gameService,
		progressionService: progressionService,
		searchService:      searchService,
		redisClient:        redisClient,
		cooldown:           cooldown,
	}
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func clean(raw string, emptyMsg, tooLongMsg string, max int) (string, error) {
	text := sanitize.Text(raw)
	if text == "" {
		return "", apperror.BadRequest(emptyMsg)
	}
	if utf8.RuneCountInString(text) > max {
		return "", apperror.BadRequest(tooLongMsg)
	}
	return text, nil
}

func (s *reviewService) CreateReview(ctx context.Context, userID uuid.UUID, input reviewDto.CreateReviewInput) (*reviewDto.ReviewResponse, error) {
	if input.GameID <= 0 || input.Rating == 0 || input.Title == "" || input.Content == "" {
		return nil, apperror.BadRequest(MsgMissingFields)
	}
	if !validRating(input.Rating) {
		return nil, apperror.BadRequest(MsgRatingRange)
	}
	title, err := clean(input.Title, MsgEmptyTitle, MsgTitleTooLong, maxTitleLength)
	if err != nil {
		return nil, err
	}
	content, err := clean(input.Content, MsgEmptyContent, MsgContentTooLong, maxContentLength)
	if err != nil {
		return nil, err
	}

	game, err := s.gameService.FindOrCreate(ctx, input.GameID)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByUserAndGame(ctx, userID, game.ID)
	if err == nil {
		return nil, apperror.Conflict(MsgAlreadyReviewed)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := ratelimiter.Guard(ctx, s.redisClient, userID, "create_review", s.cooldown); err != nil {
		return nil, err
	}
	created := false
	defer func() {
		if !created {
			_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, "create_review")
		}
	}()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	review := &entity.Review{
		ID:      id,
		UserID:  userID,
		GameID:  game.ID,
		Rating:  input.Rating,
		Title:   title,
		Content: content,
		Spoiler: input.Spoiler,
	}
	event, err := s.progressionService.NewEvent(userID, entity.ActionCreateReview, review.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithEvent(ctx, review, event); err != nil {
		if apperror.IsDuplicate(err) {
			return nil, apperror.Conflict(MsgAlreadyReviewed)
		}
		return nil, err
	}
	created = true
	s.progressionService.ApplyNow(ctx, event.ID)

	return s.reload(ctx, review.ID)
}

// reload reads the joined row back, refreshes the search index and returns the payload.
func (s *reviewService) reload(ctx context.Context, id uuid.UUID) (*reviewDto.ReviewResponse, error) {
	row, err := s.repo.GetRow(ctx, id)
	if err != nil {
		return nil, err
	}
	s.searchService.IndexAsync(document(row))

	res := toResponse(*row)
	return &res, nil
}

func (s *reviewService) GetReviews(ctx context.Context, query dto.FeedQuery) ([]reviewDto.ReviewResponse, error) {
	return s.list(ctx, reviewRepo.ReviewFilter{}, query)
}

func (s *reviewService) GetReview(ctx context.Context, id uuid.UUID) (*reviewDto.ReviewResponse, error) {
	row, err := s.repo.GetRow(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(MsgReviewNotFound)
	}
	if err != nil {
		return nil, err
	}
	res := toResponse(*row)
	return &res, nil
}

func (s *reviewService) GetGameReviews(ctx context.Context, rawgID int, query dto.FeedQuery) ([]reviewDto.ReviewResponse, error) {
	game, err := s.gameRepo.FindByRawgID(ctx, rawgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []reviewDto.ReviewResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.list(ctx, reviewRepo.ReviewFilter{GameID: &game.ID}, query)
}

func (s *reviewService) GetUserReviews(ctx context.Context, userID uuid.UUID, query dto.FeedQuery) ([]reviewDto.ReviewResponse, error) {
	return s.list(ctx, reviewRepo.ReviewFilter{UserID: &userID}, query)
}

func (s *reviewService) list(ctx context.Context, filter reviewRepo.ReviewFilter, query dto.FeedQuery) ([]reviewDto.ReviewResponse, error) {
	rows, err := s.repo.List(ctx, filter, query.Sort, query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	result := make([]reviewDto.ReviewResponse, len(rows))
	for i, row := range rows {
		result[i] = toResponse(row)
	}
	return result, nil
}

func (s *reviewService) findOwned(ctx context.Context, userID, id uuid.UUID, forbidden string) (*entity.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(MsgReviewNotFound)
	}
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, apperror.Forbidden(forbidden)
	}
	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, userID, id uuid.UUID, input reviewDto.UpdateReviewInput) (*reviewDto.ReviewResponse, error) {
	if input.Rating == nil && input.Title == nil && input.Content == nil && input.Spoiler == nil {
		return nil, apperror.BadRequest(MsgNothingToUpdate)
	}

	fields := map[string]any{}
	if input.Rating != nil {
		if !validRating(*input.Rating) {
			return nil, apperror.BadRequest(MsgRatingRange)
		}
		fields["rating"] = *input.Rating
	}
	if input.Title != nil {
		title, err := clean(*input.Title, MsgEmptyTitle, MsgTitleTooLong, maxTitleLength)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if input.Content != nil {
		content, err := clean(*input.Content, MsgEmptyContent, MsgContentTooLong, maxContentLength)
		if err != nil {
			return nil, err
		}
		fields["content"] = content
	}
	if input.Spoiler != nil {
		fields["spoiler"] = *input.Spoiler
	}

	review, err := s.findOwned(ctx, userID, id, MsgForbiddenUpdate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, review, fields); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *reviewService) DeleteReview(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, id, MsgForbiddenDelete); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgReviewNotFound)
	}
	s.searchService.DeleteAsync(searchDto.KindReview, id.String())
	return nil
}

func toResponse(row reviewRepo.ReviewRow) reviewDto.ReviewResponse {
	return reviewDto.ReviewResponse{
		ID:      row.ID,
		UserID:  row.UserID,
		Rating:  row.Rating,
		Title:   row.Title,
		Content: row.Content,
		Spoiler: row.Spoiler,
		Author: dto.AuthorResponse{
			ID:        row.UserID,
			Username:  row.AuthorUsername,
			AvatarURL: row.AuthorAvatarURL,
			Level:     row.AuthorLevel,
		},
		Game: dto.GameSummary{
			ID:              row.GameID,
			RawgID:          row.GameRawgID,
			Name:            row.GameName,
			BackgroundImage: row.GameBackgroundImage,
			CoverURL:        row.GameCoverURL,
		},
		LikesCount:    row.LikesCount,
		CommentsCount: row.CommentsCount,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func document(row *reviewRepo.ReviewRow) searchDto.ContentDocument {
	return searchDto.ContentDocument{
		ID:         row.ID.String(),
		Kind:       searchDto.KindReview,
		Title:      row.Title,
		Content:    row.Content,
		Spoiler:    row.Spoiler,
		Rating:     row.Rating,
		UserID:     row.UserID.String(),
		Username:   row.AuthorUsername,
		GameRawgID: row.GameRawgID,
		GameName:   row.GameName,
		CreatedAt:  row.CreatedAt.Unix(),
	}
}
