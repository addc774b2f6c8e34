package dto

import (
	"time"

	"github.com/google/uuid"
)

// FollowUser is one entry of a followers or following list.
type FollowUser struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	AvatarURL  *string   `json:"avatar_url"`
	Level      int       `json:"level"`
	FollowedAt time.Time `json:"followed_at"`
}
