package handler

import (
	"net/http"
	"strings"

	"mymemorycard.com/backend/internal/modules/user/dto"
	"mymemorycard.com/backend/internal/modules/user/service"
	"mymemorycard.com/backend/pkg/response"
	"mymemorycard.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var input dto.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": firstMessage(err)})
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Utilisateur créé avec succès",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Connexion réussie",
		"token":   result.Token,
		"user":    result.User,
	})
}

// Logout only acknowledges; tokens are stateless and dropped by the client.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// firstMessage reports one problem at a time, in field order.
func firstMessage(err error) string {
	msg := validator.FormatValidationError(err)
	for _, known := range []string{validator.MsgRequired, validator.MsgUsername, validator.MsgEmail} {
		if strings.Contains(msg, known) {
			return known
		}
	}
	return msg
}
