package dto

import "github.com/google/uuid"

// ListQuery is the limit/offset pair accepted by every feed.
type ListQuery struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

type OffsetPagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	Level     int       `json:"level"`
}

type GameSummary struct {
	ID              uint    `json:"id"`
	RawgID          int     `json:"rawg_id"`
	Name            string  `json:"name"`
	BackgroundImage *string `json:"background_image"`
	CoverURL        *string `json:"cover_url"`
}

// LevelStatus is the progression block embedded in profile and leaderboard payloads.
type LevelStatus struct {
	Exp             int `json:"exp"`
	Level           int `json:"level"`
	Progress        int `json:"progress"` // percentage toward next level
	CurrentLevelExp int `json:"current_level_exp"`
	NextLevelExp    int `json:"next_level_exp"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// FeedQuery is the sort/limit/offset triple accepted by content feeds.
type FeedQuery struct {
	Sort   string `form:"sort,default=recent"`
	Limit  int    `form:"limit,default=20"`
	Offset int    `form:"offset,default=0"`
}

func (q FeedQuery) Pagination(count int) OffsetPagination {
	return OffsetPagination{Limit: q.Limit, Offset: q.Offset, Count: count}
}
