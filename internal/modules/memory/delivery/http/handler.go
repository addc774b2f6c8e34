package handler

import (
	"net/http"
	"strconv"

	memoryDto "mymemorycard.com/backend/internal/modules/memory/dto"
	memoryService "mymemorycard.com/backend/internal/modules/memory/service"
	"mymemorycard.com/backend/pkg/dto"
	"mymemorycard.com/backend/pkg/response"
	"mymemorycard.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MemoryHandler struct {
	service memoryService.MemoryService
}

func NewMemoryHandler(service memoryService.MemoryService) *MemoryHandler {
	return &MemoryHandler{service: service}
}

func memoryIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de souvenir invalide"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *MemoryHandler) CreateMemory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input memoryDto.CreateMemoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.MsgBody})
		return
	}

	memory, err := h.service.CreateMemory(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Souvenir créé avec succès", "memory": memory})
}

func (h *MemoryHandler) GetMemories(c *gin.Context) {
	query, ok := dto.BindFeedQuery(c, memoryDto.SortRecent, memoryDto.SortPopular)
	if !ok {
		return
	}

	memories, err := h.service.GetMemories(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"memories": memories, "pagination": query.Pagination(len(memories))})
}

func (h *MemoryHandler) GetMemory(c *gin.Context) {
	id, ok := memoryIDParam(c)
	if !ok {
		return
	}

	memory, err := h.service.GetMemory(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"memory": memory})
}

func (h *MemoryHandler) GetGameMemories(c *gin.Context) {
	rawgID, err := strconv.Atoi(c.Param("rawgId"))
	if err != nil || rawgID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de jeu invalide"})
		return
	}
	query, ok := dto.BindFeedQuery(c)
	if !ok {
		return
	}

	memories, err := h.service.GetGameMemories(c.Request.Context(), rawgID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"memories": memories, "pagination": query.Pagination(len(memories))})
}

func (h *MemoryHandler) GetUserMemories(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId invalide"})
		return
	}
	query, ok := dto.BindFeedQuery(c)
	if !ok {
		return
	}

	memories, err := h.service.GetUserMemories(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"memories": memories, "pagination": query.Pagination(len(memories))})
}

func (h *MemoryHandler) UpdateMemory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := memoryIDParam(c)
	if !ok {
		return
	}

	var input memoryDto.UpdateMemoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.MsgBody})
		return
	}

	memory, err := h.service.UpdateMemory(c.Request.Context(), userID, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Souvenir modifié avec succès", "memory": memory})
}

func (h *MemoryHandler) DeleteMemory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := memoryIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteMemory(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Souvenir supprimé avec succès"})
}
