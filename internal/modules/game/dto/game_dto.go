package dto

import "mymemorycard.com/backend/internal/entity"

type SearchQuery struct {
	Q        string `form:"q"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=40"`
}

type RankingQuery struct {
	Limit int `form:"limit,default=10" binding:"min=1,max=50"`
}

// TopGame is a game ranked by its community reviews.
type TopGame struct {
	entity.Game
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// TrendingGame is a game ranked by recent collection, memory and review activity.
type TrendingGame struct {
	entity.Game
	Activity int64 `json:"activity"`
}
