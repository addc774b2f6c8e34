package response

import (
	"errors"
	"net/http"
	"strconv"

	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/logger"
	"mymemorycard.com/backend/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const internalErrorMessage = "Erreur serveur"

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OptionalUserID returns the caller's ID when the request carried a valid token.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Never leak internal details
	if code == http.StatusInternalServerError {
		logger.Log.WithError(err).
			WithField("method", c.Request.Method).
			WithField("path", c.FullPath()).
			Error("internal error")
		c.JSON(code, gin.H{"error": internalErrorMessage})
		return
	}

	var rlErr *ratelimiter.RateLimitError
	if errors.As(err, &rlErr) {
		c.Header("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds()+0.5)))
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
