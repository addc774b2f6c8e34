package handler

import (
	"net/http"

	profileDto "mymemorycard.com/backend/internal/modules/profile/dto"
	profile "mymemorycard.com/backend/internal/modules/profile/service"
	"mymemorycard.com/backend/pkg/response"
	"mymemorycard.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetCurrentProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	me, err := h.profileService.GetCurrentProfile(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": me})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input profileDto.UpdateProfileInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	avatar, closeAvatar, err := formImage(c, "avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Impossible de lire l'avatar"})
		return
	}
	defer closeAvatar()

	banner, closeBanner, err := formImage(c, "banner")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Impossible de lire la bannière"})
		return
	}
	defer closeBanner()

	me, err := h.profileService.UpdateProfile(c.Request.Context(), userID, input, avatar, banner)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour", "user": me})
}

// formImage opens an optional multipart file. The returned func closes it.
func formImage(c *gin.Context, field string) (*profileDto.ImageFile, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &profileDto.ImageFile{Reader: file, FileName: fileHeader.Filename}, func() { _ = file.Close() }, nil
}

func (h *ProfileHandler) GetPublicProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId invalide"})
		return
	}

	p, err := h.profileService.GetPublicProfile(c.Request.Context(), userID, response.OptionalUserID(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": p})
}

func (h *ProfileHandler) SearchUsers(c *gin.Context) {
	var query profileDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	users, err := h.profileService.SearchUsers(c.Request.Context(), query.Q, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *ProfileHandler) GetUserStats(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId invalide"})
		return
	}

	stats, err := h.profileService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
