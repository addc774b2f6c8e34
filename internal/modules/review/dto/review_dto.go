package dto

import (
	"time"

	"mymemorycard.com/backend/pkg/dto"
	"github.com/google/uuid"
)

const (
	SortRecent   = "recent"
	SortTopRated = "top_rated"
)

type CreateReviewInput struct {
	GameID  int    `json:"gameId"`
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Spoiler bool   `json:"spoiler"`
}

type UpdateReviewInput struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Spoiler *bool   `json:"spoiler"`
}

type ReviewResponse struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	Rating        int                `json:"rating"`
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
