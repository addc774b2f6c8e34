package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mymemorycard.com/backend/internal/entity"
	gameDto "mymemorycard.com/backend/internal/modules/game/dto"
	gameRepo "mymemorycard.com/backend/internal/modules/game/repository"
	"mymemorycard.com/backend/internal/providers"
	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	searchCacheTTL = 10 * time.Minute
	trendingWindow = 7 * 24 * time.Hour

	MsgRawgUnavailable = "Le service RAWG est temporairement indisponible"
	MsgGameNotFound    = "Jeu introuvable"
)

type GameService interface {
	// FindOrCreate returns the local mirror of a RAWG game, importing it on first use.
	FindOrCreate(ctx context.Context, rawgID int) (*entity.Game, error)
	SearchGames(ctx context.Context, query string, page, pageSize int) (*providers.RawgSearchResponse, error)
	ListGames(ctx context.Context, limit, offset int) ([]entity.Game, error)
	CountGames(ctx context.Context) (int64, error)
	GetTopGames(ctx context.Context, limit int) ([]gameDto.TopGame, error)
	GetTrendingGames(ctx context.Context, limit int) ([]gameDto.TrendingGame, error)
}

type gameService struct {
	repo        gameRepo.GameRepository
	catalog     providers.GameCatalog
	covers      providers.CoverProvider
	redisClient *redis.Client
	imports     singleflight.Group
}

// NewGameService wires the catalog mirror. covers and redisClient may be nil.
func NewGameService(repo gameRepo.GameRepository, catalog providers.GameCatalog, covers providers.CoverProvider, redisClient *redis.Client) GameService {
	return &gameService{
		repo:        repo,
		catalog:     catalog,
		covers:      covers,
		redisClient: redisClient,
	}
}

func (s *gameService) FindOrCreate(ctx context.Context, rawgID int) (*entity.Game, error) {
	game, err := s.repo.FindByRawgID(ctx, rawgID)
	if err == nil {
		return game, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	v, err, _ := s.imports.Do(strconv.Itoa(rawgID), func() (any, error) {
		if game, err := s.repo.FindByRawgID(ctx, rawgID); err == nil {
			return game, nil
		}
		return s.importGame(ctx, rawgID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.Game), nil
}

func (s *gameService) importGame(ctx context.Context, rawgID int) (*entity.Game, error) {
	details, err := s.catalog.GetGameDetails(ctx, rawgID)
	if err != nil {
		if errors.Is(err, providers.ErrGameNotFound) {
			return nil, apperror.NotFound(MsgGameNotFound)
		}
		return nil, apperror.Unavailable(MsgRawgUnavailable, fmt.Errorf("%w: %v", apperror.ErrUpstreamUnavailable, err))
	}

	game := &entity.Game{
		RawgID:          details.ID,
		Name:            details.Name,
		BackgroundImage: details.BackgroundImage,
		Released:        details.Released,
		Rating:          details.Rating,
		Platforms:       rawJSON(details.Platforms),
		Genres:          rawJSON(details.Genres),
	}
	if s.covers != nil {
		if cover := s.covers.CoverByName(ctx, details.Name); cover != "" {
			game.CoverURL = &cover
		}
	}

	if err := s.repo.Create(ctx, game); err != nil {
		// another instance imported it first
		if apperror.IsDuplicate(err) {
			return s.repo.FindByRawgID(ctx, rawgID)
		}
		return nil, err
	}

	logger.Log.WithField("rawg_id", rawgID).WithField("name", game.Name).Info("game imported from rawg")
	return game, nil
}

func rawJSON(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func (s *gameService) SearchGames(ctx context.Context, query string, page, pageSize int) (*providers.RawgSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.BadRequest(`Le paramètre de recherche "q" est obligatoire`)
	}

	cacheKey := fmt.Sprintf("rawg:search:%s:%d:%d", strings.ToLower(query), page, pageSize)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
			var res providers.RawgSearchResponse
			if json.Unmarshal(cached, &res) == nil {
				return &res, nil
			}
		}
	}

	res, err := s.catalog.SearchGames(ctx, query, page, pageSize)
	if err != nil {
		logger.Log.WithError(err).WithField("query", query).Warn("rawg search failed")
		return nil, apperror.Unavailable(MsgRawgUnavailable, nil)
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(res); err == nil {
			s.redisClient.Set(ctx, cacheKey, payload, searchCacheTTL)
		}
	}

	return res, nil
}

func (s *gameService) ListGames(ctx context.Context, limit, offset int) ([]entity.Game, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *gameService) CountGames(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *gameService) GetTopGames(ctx context.Context, limit int) ([]gameDto.TopGame, error) {
	scores, err := s.repo.TopRated(ctx, limit)
	if err != nil {
		return nil, err
	}

	games, err := s.gamesFor(ctx, scores)
	if err != nil {
		return nil, err
	}

	result := make([]gameDto.TopGame, 0, len(scores))
	for _, score := range scores {
		if g, ok := games[score.GameID]; ok {
			result = append(result, gameDto.TopGame{
				Game:          g,
				AverageRating: float64(int(score.Score*100+0.5)) / 100,
				ReviewCount:   score.Count,
			})
		}
	}
	return result, nil
}

func (s *gameService) GetTrendingGames(ctx context.Context, limit int) ([]gameDto.TrendingGame, error) {
	scores, err := s.repo.Trending(ctx, time.Now().UTC().Add(-trendingWindow), limit)
	if err != nil {
		return nil, err
	}

	games, err := s.gamesFor(ctx, scores)
	if err != nil {
		return nil, err
	}

	result := make([]gameDto.TrendingGame, 0, len(scores))
	for _, score := range scores {
		if g, ok := games[score.GameID]; ok {
			result = append(result, gameDto.TrendingGame{Game: g, Activity: score.Count})
		}
	}
	return result, nil
}

// gamesFor loads the games behind ranked rows, keyed by id so callers keep the ranking order.
func (s *gameService) gamesFor(ctx context.Context, scores []gameRepo.GameScore) (map[uint]entity.Game, error) {
	ids := make([]uint, 0, len(scores))
	for _, score := range scores {
		ids = append(ids, score.GameID)
	}

	games, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]entity.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	return byID, nil
}
