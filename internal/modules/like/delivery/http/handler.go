package handler

import (
	"net/http"

	likeDto "mymemorycard.com/backend/internal/modules/like/dto"
	likeService "mymemorycard.com/backend/internal/modules/like/service"
	"mymemorycard.com/backend/pkg/response"
	"mymemorycard.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	service likeService.LikeService
}

func NewLikeHandler(service likeService.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

func (h *LikeHandler) bind(c *gin.Context) (likeDto.LikeInput, bool) {
	var input likeDto.LikeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.MsgBody})
		return input, false
	}
	return input, true
}

func (h *LikeHandler) Like(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	input, ok := h.bind(c)
	if !ok {
		return
	}

	like, err := h.service.Like(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Like ajouté avec succès", "like": like})
}

func (h *LikeHandler) Unlike(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	input, ok := h.bind(c)
	if !ok {
		return
	}

	if err := h.service.Unlike(c.Request.Context(), userID, input); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Like retiré avec succès"})
}

func (h *LikeHandler) Toggle(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	input, ok := h.bind(c)
	if !ok {
		return
	}

	res, err := h.service.Toggle(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *LikeHandler) GetLikes(c *gin.Context) {
	count, likes, err := h.service.GetLikes(c.Request.Context(), c.Param("targetType"), c.Param("targetId"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count, "likes": likes})
}

func (h *LikeHandler) CheckLike(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	liked, err := h.service.HasLiked(c.Request.Context(), userID, c.Param("targetType"), c.Param("targetId"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hasLiked": liked})
}
