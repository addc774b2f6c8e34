package handler

import (
	"net/http"
	"strconv"

	gameDto "mymemorycard.com/backend/internal/modules/game/dto"
	gameService "mymemorycard.com/backend/internal/modules/game/service"
	"mymemorycard.com/backend/pkg/dto"
	"mymemorycard.com/backend/pkg/response"
	"mymemorycard.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	service gameService.GameService
}

func NewGameHandler(service gameService.GameService) *GameHandler {
	return &GameHandler{service: service}
}

func (h *GameHandler) SearchGames(c *gin.Context) {
	var query gameDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	results, err := h.service.SearchGames(c.Request.Context(), query.Q, query.Page, query.PageSize)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *GameHandler) GetAllGames(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	games, err := h.service.ListGames(c.Request.Context(), query.Limit, query.Offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"games":      games,
		"pagination": dto.OffsetPagination{Limit: query.Limit, Offset: query.Offset, Count: len(games)},
	})
}

func (h *GameHandler) GetTotalGamesCount(c *gin.Context) {
	count, err := h.service.CountGames(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

func (h *GameHandler) GetTopGames(c *gin.Context) {
	var query gameDto.RankingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	games, err := h.service.GetTopGames(c.Request.Context(), query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *GameHandler) GetTrendingGames(c *gin.Context) {
	var query gameDto.RankingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	games, err := h.service.GetTrendingGames(c.Request.Context(), query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *GameHandler) GetGameDetails(c *gin.Context) {
	rawgID, err := strconv.Atoi(c.Param("rawgId"))
	if err != nil || rawgID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Id RAWG de jeu invalide"})
		return
	}

	game, err := h.service.FindOrCreate(c.Request.Context(), rawgID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game": game})
}
