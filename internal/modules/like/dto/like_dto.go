package dto

import (
	"time"

	"github.com/google/uuid"
)

type LikeInput struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
}

type LikeResponse struct {
	ID         uint      `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	AvatarURL  *string   `json:"avatar_url"`
	TargetType string    `json:"target_type"`
	TargetID   uuid.UUID `json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type ToggleResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}
