package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
	commonDto "mymemorycard.com/backend/pkg/dto"
)

// ImageFile is an uploaded avatar or banner.
type ImageFile struct {
	Reader   io.Reader
	FileName string
}

// UpdateProfileInput is accepted as JSON or multipart form. Nil fields are left unchanged.
type UpdateProfileInput struct {
	Username  *string `json:"username" form:"username" binding:"omitempty,username"`
	Bio       *string `json:"bio" form:"bio" binding:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" form:"avatar_url" binding:"omitempty,url"`
	BannerURL *string `json:"banner_url" form:"banner_url" binding:"omitempty,url"`
}

type SearchQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit,default=10" binding:"min=1,max=50"`
}

// MeResponse is the caller's own account with its progression block.
type MeResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url"`
	BannerURL *string   `json:"banner_url"`
	Bio       *string   `json:"bio"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	commonDto.LevelStatus
}

type PublicProfileResponse struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	AvatarURL      *string   `json:"avatar_url"`
	BannerURL      *string   `json:"banner_url"`
	Bio            *string   `json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	// IsFollowing is only set when the viewer is authenticated.
	IsFollowing *bool `json:"is_following,omitempty"`
	commonDto.LevelStatus
}

type UserSearchResult struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       *string   `json:"bio"`
	Level     int       `json:"level"`
}

// UserStats aggregates a user's activity.
type UserStats struct {
	MemoriesCount       int64            `json:"memories_count"`
	ReviewsCount        int64            `json:"reviews_count"`
	CommentsCount       int64            `json:"comments_count"`
	CollectionCount     int64            `json:"collection_count"`
	CollectionByStatus  map[string]int64 `json:"collection_by_status"`
	FollowersCount      int64            `json:"followers_count"`
	FollowingCount      int64            `json:"following_count"`
	LikesReceived       int64            `json:"likes_received"`
	AverageReviewRating float64          `json:"average_review_rating"`
}

type UserStatsResponse struct {
	UserID uuid.UUID `json:"user_id"`
	UserStats
	commonDto.LevelStatus
}
