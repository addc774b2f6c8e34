package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mymemorycard.com/backend/internal/entity"
	userRepo "mymemorycard.com/backend/internal/modules/user/repository"
	"mymemorycard.com/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1], true
		}
		return "", false
	}

	// Fallback to query parameter "token" (useful for WebSockets)
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

func (m *AuthMiddleware) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" && c.Query("token") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant. Authentification requise."})
			c.Abort()
			return
		}

		tokenString, ok := extractToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Format de token invalide."})
			c.Abort()
			return
		}

		claims, err := m.parse(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expiré. Veuillez vous reconnecter."})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide."})
			}
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Next()
	}
}

// OptionalAuth sets user_id when a valid token is present and never rejects.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := extractToken(c); ok {
			if claims, err := m.parse(tokenString); err == nil {
				c.Set("user_id", claims.Subject)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié. Token manquant ou invalide."})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé."})
			} else {
				response.ResponseError(c, err)
			}
			c.Abort()
			return
		}

		if user.Role != entity.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé. Privilèges administrateur requis."})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
