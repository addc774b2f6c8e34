package handler

import (
	"net/http"

	followService "mymemorycard.com/backend/internal/modules/follow/service"
	"mymemorycard.com/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FollowHandler struct {
	service followService.FollowService
}

func NewFollowHandler(service followService.FollowService) *FollowHandler {
	return &FollowHandler{service: service}
}

func userIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId invalide"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *FollowHandler) Follow(c *gin.Context) {
	followerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	targetID, ok := userIDParam(c)
	if !ok {
		return
	}

	follow, err := h.service.Follow(c.Request.Context(), followerID, targetID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Vous suivez maintenant cet utilisateur", "follow": follow})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	followerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	targetID, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), followerID, targetID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vous ne suivez plus cet utilisateur"})
}

func (h *FollowHandler) GetFollowers(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	followers, err := h.service.GetFollowers(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(followers), "followers": followers})
}

func (h *FollowHandler) GetFollowing(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	following, err := h.service.GetFollowing(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(following), "following": following})
}

func (h *FollowHandler) CheckFollow(c *gin.Context) {
	followerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	targetID, ok := userIDParam(c)
	if !ok {
		return
	}

	following, err := h.service.IsFollowing(c.Request.Context(), followerID, targetID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"isFollowing": following})
}
