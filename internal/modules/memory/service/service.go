package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"mymemorycard.com/backend/internal/entity"
	gameRepo "mymemorycard.com/backend/internal/modules/game/repository"
	gameService "mymemorycard.com/backend/internal/modules/game/service"
	memoryDto "mymemorycard.com/backend/internal/modules/memory/dto"
	memoryRepo "mymemorycard.com/backend/internal/modules/memory/repository"
	progressionService "mymemorycard.com/backend/internal/modules/progression/service"
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

	MsgMemoryNotFound  = "Souvenir introuvable"
	MsgMissingFields   = "gameId, title et content sont requis"
	MsgEmptyTitle      = "Le titre ne peut pas être vide"
	MsgEmptyContent    = "Le contenu ne peut pas être vide"
	MsgTitleTooLong    = "Le titre ne doit pas dépasser 200 caractères"
	MsgContentTooLong  = "Le contenu ne doit pas dépasser 10000 caractères"
	MsgNothingToUpdate = "Au moins un champ (title, content ou spoiler) est requis"
	MsgForbiddenUpdate = "Vous n'êtes pas autorisé à modifier ce souvenir"
	MsgForbiddenDelete = "Vous n'êtes pas autorisé à supprimer ce souvenir"
)

type MemoryService interface {
	CreateMemory(ctx context.Context, userID uuid.UUID, input memoryDto.CreateMemoryInput) (*memoryDto.MemoryResponse, error)
	GetMemories(ctx context.Context, query dto.FeedQuery) ([]memoryDto.MemoryResponse, error)
	GetMemory(ctx context.Context, id uuid.UUID) (*memoryDto.MemoryResponse, error)
	GetGameMemories(ctx context.Context, rawgID int, query dto.FeedQuery) ([]memoryDto.MemoryResponse, error)
	GetUserMemories(ctx context.Context, userID uuid.UUID, query dto.FeedQuery) ([]memoryDto.MemoryResponse, error)
	UpdateMemory(ctx context.Context, userID, id uuid.UUID, input memoryDto.UpdateMemoryInput) (*memoryDto.MemoryResponse, error)
	DeleteMemory(ctx context.Context, userID, id uuid.UUID) error
}

type memoryService struct {
	repo               memoryRepo.MemoryRepository
	gameRepo           gameRepo.GameRepository
	gameService        gameService.GameService
	progressionService progressionService.ProgressionService
	searchService      searchService.SearchService
	redisClient        *redis.Client
	cooldown           time.Duration
}

func NewMemoryService(
	repo memoryRepo.MemoryRepository,
	gameRepo gameRepo.GameRepository,
	gameService gameService.GameService,
	progressionService progressionService.ProgressionService,
	searchService searchService.SearchService,
	redisClient *redis.Client,
	cooldown time.Duration,
) MemoryService {
	return &memoryService{
		repo:               repo,
		gameRepo:           gameRepo,
		gameService:        gameService,
		progressionService: progressionService,
		searchService:      searchService,
		redisClient:        redisClient,
		cooldown:           cooldown,
	}
}

func cleanTitle(raw string) (string, error) {
	title := sanitize.Text(raw)
	if title == "" {
		return "", apperror.BadRequest(MsgEmptyTitle)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", apperror.BadRequest(MsgTitleTooLong)
	}
	return title, nil
}

func cleanContent(raw string) (string, error) {
	content := sanitize.Text(raw)
	if content == "" {
		return "", apperror.BadRequest(MsgEmptyContent)
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return "", apperror.BadRequest(MsgContentTooLong)
	}
	return content, nil
}

func (s *memoryService) CreateMemory(ctx context.Context, userID uuid.UUID, input memoryDto.CreateMemoryInput) (*memoryDto.MemoryResponse, error) {
	if input.GameID <= 0 || input.Title == "" || input.Content == "" {
		return nil, apperror.BadRequest(MsgMissingFields)
	}
	title, err := cleanTitle(input.Title)
	if err != nil {
		return nil, err
	}
	content, err := cleanContent(input.Content)
	if err != nil {
		return nil, err
	}

	if err := ratelimiter.Guard(ctx, s.redisClient, userID, "create_memory", s.cooldown); err != nil {
		return nil, err
	}
	created := false
	defer func() {
		if !created {
			_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, "create_memory")
		}
	}()

	game, err := s.gameService.FindOrCreate(ctx, input.GameID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	memory := &entity.Memory{
		ID:      id,
		UserID:  userID,
		GameID:  game.ID,
		Title:   title,
		Content: content,
		Spoiler: input.Spoiler,
	}
	event, err := s.progressionService.NewEvent(userID, entity.ActionCreateMemory, memory.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithEvent(ctx, memory, event); err != nil {
		return nil, err
	}
	created = true
	s.progressionService.ApplyNow(ctx, event.ID)

	row, err := s.repo.GetRow(ctx, memory.ID)
	if err != nil {
		return nil, err
	}
	s.searchService.IndexAsync(document(row))

	res := toResponse(*row)
	return &res, nil
}

func (s *memoryService) GetMemories(ctx context.Context, query dto.FeedQuery) ([]memoryDto.MemoryResponse, error) {
	return s.list(ctx, memoryRepo.MemoryFilter{}, query)
}

func (s *memoryService) GetMemory(ctx context.Context, id uuid.UUID) (*memoryDto.MemoryResponse, error) {
	row, err := s.repo.GetRow(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgMemoryNotFound)
		}
		return nil, err
	}
	res := toResponse(*row)
	return &res, nil
}

func (s *memoryService) GetGameMemories(ctx context.Context, rawgID int, query dto.FeedQuery) ([]memoryDto.MemoryResponse, error) {
	game, err := s.gameRepo.FindByRawgID(ctx, rawgID)
	if err != nil {
		// a game nobody wrote about is not mirrored yet
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []memoryDto.MemoryResponse{}, nil
		}
		return nil, err
	}
	return s.list(ctx, memoryRepo.MemoryFilter{GameID: &game.ID}, query)
}

func (s *memoryService) GetUserMemories(ctx context.Context, userID uuid.UUID, query dto.FeedQuery) ([]memoryDto.MemoryResponse, error) {
	return s.list(ctx, memoryRepo.MemoryFilter{UserID: &userID}, query)
}

func (s *memoryService) list(ctx context.Context, filter memoryRepo.MemoryFilter, query dto.FeedQuery) ([]memoryDto.MemoryResponse, error) {
	rows, err := s.repo.List(ctx, filter, query.Sort, query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	result := make([]memoryDto.MemoryResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, toResponse(row))
	}
	return result, nil
}

func (s *memoryService) findOwned(ctx context.Context, userID, id uuid.UUID, forbidden string) (*entity.Memory, error) {
	memory, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgMemoryNotFound)
		}
		return nil, err
	}
	if memory.UserID != userID {
		return nil, apperror.Forbidden(forbidden)
	}
	return memory, nil
}

func (s *memoryService) UpdateMemory(ctx context.Context, userID, id uuid.UUID, input memoryDto.UpdateMemoryInput) (*memoryDto.MemoryResponse, error) {
	if input.Title == nil && input.Content == nil && input.Spoiler == nil {
		return nil, apperror.BadRequest(MsgNothingToUpdate)
	}

	fields := map[string]any{}
	if input.Title != nil {
		title, err := cleanTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if input.Content != nil {
		content, err := cleanContent(*input.Content)
		if err != nil {
			return nil, err
		}
		fields["content"] = content
	}
	if input.Spoiler != nil {
		fields["spoiler"] = *input.Spoiler
	}

	memory, err := s.findOwned(ctx, userID, id, MsgForbiddenUpdate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, memory, fields); err != nil {
		return nil, err
	}

	row, err := s.repo.GetRow(ctx, id)
	if err != nil {
		return nil, err
	}
	s.searchService.IndexAsync(document(row))

	res := toResponse(*row)
	return &res, nil
}

func (s *memoryService) DeleteMemory(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, id, MsgForbiddenDelete); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgMemoryNotFound)
	}
	s.searchService.DeleteAsync(searchDto.KindMemory, id.String())
	return nil
}

func toResponse(row memoryRepo.MemoryRow) memoryDto.MemoryResponse {
	return memoryDto.MemoryResponse{
		ID:      row.ID,
		UserID:  row.UserID,
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

func document(row *memoryRepo.MemoryRow) searchDto.ContentDocument {
	return searchDto.ContentDocument{
		ID:         row.ID.String(),
		Kind:       searchDto.KindMemory,
		Title:      row.Title,
		Content:    row.Content,
		Spoiler:    row.Spoiler,
		UserID:     row.UserID.String(),
		Username:   row.AuthorUsername,
		GameRawgID: row.GameRawgID,
		GameName:   row.GameName,
		CreatedAt:  row.CreatedAt.Unix(),
	}
}
