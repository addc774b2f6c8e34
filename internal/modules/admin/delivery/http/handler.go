package handler

import (
	"net/http"

	adminDto "mymemorycard.com/backend/internal/modules/admin/dto"
	adminService "mymemorycard.com/backend/internal/modules/admin/service"
	"mymemorycard.com/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Statistiques récupérées avec succès", "data": stats})
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	var query adminDto.UsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": adminService.MsgInvalidPaging})
		return
	}

	page, err := h.adminService.GetUsers(c.Request.Context(), query.Page, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Utilisateurs récupérés avec succès", "data": page})
}

func (h *AdminHandler) GetUserByID(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	user, err := h.adminService.GetUserDetails(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Détails utilisateur récupérés avec succès", "data": user})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	deleted, err := h.adminService.DeleteUser(c.Request.Context(), adminID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur supprimé avec succès", "data": deleted})
}

func (h *AdminHandler) DeleteMemory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteMemory(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Souvenir supprimé avec succès"})
}

func (h *AdminHandler) DeleteReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteReview(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review supprimée avec succès"})
}

func (h *AdminHandler) DeleteComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteComment(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Commentaire supprimé avec succès"})
}
