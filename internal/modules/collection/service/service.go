package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"mymemorycard.com/backend/internal/entity"
	collectionDto "mymemorycard.com/backend/internal/modules/collection/dto"
	collectionRepo "mymemorycard.com/backend/internal/modules/collection/repository"
	gameRepo "mymemorycard.com/backend/internal/modules/game/repository"
	gameService "mymemorycard.com/backend/internal/modules/game/service"
	"mymemorycard.com/backend/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgAlreadyInCollection = "Ce jeu est déjà dans votre collection"
	MsgNotInCollection     = "Ce jeu n'est pas dans votre collection"
	MsgUnknownGame         = "Ce jeu n'existe pas dans la base de données"
	MsgRatingRange         = "La note doit être entre 1 et 5"
)

var msgInvalidStatus = fmt.Sprintf("Le status doit être : %s", strings.Join(entity.CollectionStatuses, ", "))

type CollectionService interface {
	AddGame(ctx context.Context, userID uuid.UUID, input collectionDto.AddToCollectionInput) (*entity.Collection, error)
	GetCollection(ctx context.Context, userID uuid.UUID, status string) ([]entity.Collection, error)
	UpdateGame(ctx context.Context, userID uuid.UUID, rawgID int, input collectionDto.UpdateCollectionInput) (*entity.Collection, error)
	RemoveGame(ctx context.Context, userID uuid.UUID, rawgID int) error
	GetGameStatus(ctx context.Context, userID uuid.UUID, rawgID int) (*collectionDto.CollectionStatusResponse, error)
}

type collectionService struct {
	repo        collectionRepo.CollectionRepository
	gameRepo    gameRepo.GameRepository
	gameService gameService.GameService
}

func NewCollectionService(repo collectionRepo.CollectionRepository, gameRepo gameRepo.GameRepository, gameService gameService.GameService) CollectionService {
	return &collectionService{
		repo:        repo,
		gameRepo:    gameRepo,
		gameService: gameService,
	}
}

func validStatus(status string) bool {
	return slices.Contains(entity.CollectionStatuses, status)
}

func validRating(rating *int) bool {
	return rating == nil || (*rating >= 1 && *rating <= 5)
}

func (s *collectionService) AddGame(ctx context.Context, userID uuid.UUID, input collectionDto.AddToCollectionInput) (*entity.Collection, error) {
	if input.RawgID <= 0 || input.Status == "" {
		return nil, apperror.BadRequest("Les champs rawg_id et status sont obligatoires")
	}
	if !validStatus(input.Status) {
		return nil, apperror.BadRequest(msgInvalidStatus)
	}
	if !validRating(input.UserRating) {
		return nil, apperror.BadRequest(MsgRatingRange)
	}

	game, err := s.gameService.FindOrCreate(ctx, input.RawgID)
	if err != nil {
		return nil, err
	}

	entry := &entity.Collection{
		UserID:     userID,
		GameID:     game.ID,
		Status:     input.Status,
		UserRating: input.UserRating,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if apperror.IsDuplicate(err) {
			return nil, apperror.Conflict(MsgAlreadyInCollection)
		}
		return nil, err
	}

	entry.Game = game
	return entry, nil
}

func (s *collectionService) GetCollection(ctx context.Context, userID uuid.UUID, status string) ([]entity.Collection, error) {
	if status != "" && !validStatus(status) {
		return nil, apperror.BadRequest(msgInvalidStatus)
	}
	return s.repo.ListByUser(ctx, userID, status)
}

// findEntry resolves the local game for rawgID and the caller's entry for it.
func (s *collectionService) findEntry(ctx context.Context, userID uuid.UUID, rawgID int) (*entity.Collection, error) {
	game, err := s.gameRepo.FindByRawgID(ctx, rawgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgUnknownGame)
		}
		return nil, err
	}

	entry, err := s.repo.FindByUserAndGame(ctx, userID, game.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgNotInCollection)
		}
		return nil, err
	}
	return entry, nil
}

func (s *collectionService) UpdateGame(ctx context.Context, userID uuid.UUID, rawgID int, input collectionDto.UpdateCollectionInput) (*entity.Collection, error) {
	if input.Status == nil && !input.UserRating.Set {
		return nil, apperror.BadRequest("Aucun champ à mettre à jour (status ou user_rating requis)")
	}
	if input.Status != nil && !validStatus(*input.Status) {
		return nil, apperror.BadRequest(msgInvalidStatus)
	}
	if !validRating(input.UserRating.Value) {
		return nil, apperror.BadRequest(MsgRatingRange)
	}

	entry, err := s.findEntry(ctx, userID, rawgID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Status != nil {
		fields["status"] = *input.Status
		entry.Status = *input.Status
	}
	if input.UserRating.Set {
		fields["user_rating"] = input.UserRating.Value
		entry.UserRating = input.UserRating.Value
	}

	if err := s.repo.Update(ctx, entry, fields); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *collectionService) RemoveGame(ctx context.Context, userID uuid.UUID, rawgID int) error {
	entry, err := s.findEntry(ctx, userID, rawgID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, userID, entry.GameID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgNotInCollection)
	}
	return nil
}

func (s *collectionService) GetGameStatus(ctx context.Context, userID uuid.UUID, rawgID int) (*collectionDto.CollectionStatusResponse, error) {
	entry, err := s.findEntry(ctx, userID, rawgID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &collectionDto.CollectionStatusResponse{InCollection: false}, nil
		}
		return nil, err
	}

	return &collectionDto.CollectionStatusResponse{
		InCollection: true,
		Status:       &entry.Status,
		UserRating:   entry.UserRating,
	}, nil
}
