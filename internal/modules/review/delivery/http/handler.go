package handler

import (
	"net/http"
	"strconv"

	reviewDto "mymemorycard.com/backend/internal/modules/review/dto"
	reviewService "mymemorycard.com/backend/internal/modules/review/service"
	"mymemorycard.com/backend/pkg/dto"
	"mymemorycard.com/backend/pkg/response"
	"mymemorycard.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	service reviewService.ReviewService
}

func NewReviewHandler(service reviewService.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func reviewIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de review invalide"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input reviewDto.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.MsgBody})
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review créée avec succès", "review": review})
}

func (h *ReviewHandler) GetReviews(c *gin.Context) {
	query, ok := dto.BindFeedQuery(c, reviewDto.SortRecent, reviewDto.SortTopRated)
	if !ok {
		return
	}

	reviews, err := h.service.GetReviews(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "pagination": query.Pagination(len(reviews))})
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}

	review, err := h.service.GetReview(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (h *ReviewHandler) GetGameReviews(c *gin.Context) {
	rawgID, err := strconv.Atoi(c.Param("rawgId"))
	if err != nil || rawgID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de jeu invalide"})
		return
	}
	query, ok := dto.BindFeedQuery(c)
	if !ok {
		return
	}

	reviews, err := h.service.GetGameReviews(c.Request.Context(), rawgID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "pagination": query.Pagination(len(reviews))})
}

func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId invalide"})
		return
	}
	query, ok := dto.BindFeedQuery(c)
	if !ok {
		return
	}

	reviews, err := h.service.GetUserReviews(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "pagination": query.Pagination(len(reviews))})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}

	var input reviewDto.UpdateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.MsgBody})
		return
	}

	review, err := h.service.UpdateReview(c.Request.Context(), userID, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review modifiée avec succès", "review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := reviewIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review supprimée avec succès"})
}
