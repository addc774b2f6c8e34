package handler

import (
	"net/http"
	"strconv"

	collectionDto "mymemorycard.com/backend/internal/modules/collection/dto"
	collectionService "mymemorycard.com/backend/internal/modules/collection/service"
	"mymemorycard.com/backend/pkg/response"
	"mymemorycard.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CollectionHandler struct {
	service collectionService.CollectionService
}

func NewCollectionHandler(service collectionService.CollectionService) *CollectionHandler {
	return &CollectionHandler{service: service}
}

func rawgIDParam(c *gin.Context) (int, bool) {
	rawgID, err := strconv.Atoi(c.Param("rawgId"))
	if err != nil || rawgID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Id RAWG de jeu invalide"})
		return 0, false
	}
	return rawgID, true
}

func (h *CollectionHandler) AddGameToCollection(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input collectionDto.AddToCollectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.MsgBody})
		return
	}

	entry, err := h.service.AddGame(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Jeu ajouté à votre collection",
		"collection": entry,
		"game":       entry.Game,
	})
}

func (h *CollectionHandler) GetMyCollection(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	h.respondWithCollection(c, userID)
}

func (h *CollectionHandler) GetUserCollection(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId invalide"})
		return
	}
	h.respondWithCollection(c, userID)
}

func (h *CollectionHandler) respondWithCollection(c *gin.Context, userID uuid.UUID) {
	var query collectionDto.CollectionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	entries, err := h.service.GetCollection(c.Request.Context(), userID, query.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(entries), "collection": entries})
}

func (h *CollectionHandler) UpdateGameInCollection(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	rawgID, ok := rawgIDParam(c)
	if !ok {
		return
	}

	var input collectionDto.UpdateCollectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.MsgBody})
		return
	}

	entry, err := h.service.UpdateGame(c.Request.Context(), userID, rawgID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Jeu mis à jour", "collection": entry})
}

func (h *CollectionHandler) RemoveGameFromCollection(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	rawgID, ok := rawgIDParam(c)
	if !ok {
		return
	}

	if err := h.service.RemoveGame(c.Request.Context(), userID, rawgID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Jeu supprimé de votre collection"})
}

func (h *CollectionHandler) GetGameStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	rawgID, ok := rawgIDParam(c)
	if !ok {
		return
	}

	status, err := h.service.GetGameStatus(c.Request.Context(), userID, rawgID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
