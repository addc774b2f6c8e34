package dto

import (
	"time"

	commonDto "mymemorycard.com/backend/pkg/dto"
	"github.com/google/uuid"
)

type CreateCommentInput struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Content    string `json:"content"`
}

type UpdateCommentInput struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	ID         uuid.UUID                `json:"id"`
	TargetType string                   `json:"target_type"`
	TargetID   uuid.UUID                `json:"target_id"`
	Content    string                   `json:"content"`
	Author     commonDto.AuthorResponse `json:"author"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}
