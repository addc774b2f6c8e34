package dto

import (
	"time"

	"mymemorycard.com/backend/pkg/dto"
	"github.com/google/uuid"
)

const (
	SortRecent  = "recent"
	SortPopular = "popular"
)

type CreateMemoryInput struct {
	GameID  int    `json:"gameId"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Spoiler bool   `json:"spoiler"`
}

type UpdateMemoryInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Spoiler *bool   `json:"spoiler"`
}

type MemoryResponse struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	Title         string             `json:"title"`
	Content       string             `json:"content"`
	Spoiler       bool               `json:"spoiler"`
	Author        dto.AuthorResponse `json:"author"`
	Game          dto.GameSummary    `json:"game"`
	LikesCount    int64              `json:"likes_count"`
	CommentsCount int64              `json:"comments_count"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
