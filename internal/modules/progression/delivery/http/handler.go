package http

import (
	"net/http"
	"strconv"

	progressionService "mymemorycard.com/backend/internal/modules/progression/service"
	"mymemorycard.com/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service progressionService.ProgressionService
}

func NewLeaderboardHandler(service progressionService.ProgressionService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	leaderboard, err := h.service.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": leaderboard})
}
