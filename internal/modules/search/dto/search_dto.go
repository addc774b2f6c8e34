package dto

const (
	KindMemory = "memory"
	KindReview = "review"
)

type SearchQuery struct {
	Q     string `form:"q"`
	Type  string `form:"type" binding:"omitempty,oneof=memory review"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=100"`
}

// ContentDocument is the indexed form of a memory or review.
type ContentDocument struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Spoiler    bool   `json:"spoiler"`
	Rating     int    `json:"rating,omitempty"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	GameRawgID int    `json:"game_rawg_id"`
	GameName   string `json:"game_name"`
	CreatedAt  int64  `json:"created_at"`
}

type SearchResponse struct {
	Query    string            `json:"query"`
	Memories []ContentDocument `json:"memories"`
	Reviews  []ContentDocument `json:"reviews"`
}
