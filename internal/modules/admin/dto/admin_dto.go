package dto

import (
	"time"

	profileDto "mymemorycard.com/backend/internal/modules/profile/dto"
	"github.com/google/uuid"
)

// UsersQuery is page-based, unlike the offset feeds.
type UsersQuery struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

type GlobalStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalGames       int64 `json:"total_games"`
	TotalMemories    int64 `json:"total_memories"`
	TotalReviews     int64 `json:"total_reviews"`
	TotalCollections int64 `json:"total_collections"`
	TotalComments    int64 `json:"total_comments"`
	TotalLikes       int64 `json:"total_likes"`
}

type AdminUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	BannerURL *string   `json:"banner_url,omitempty"`
	Exp       int       `json:"exp"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

type UsersPagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalUsers   int64 `json:"totalUsers"`
	UsersPerPage int   `json:"usersPerPage"`
}

type UsersPage struct {
	Users      []AdminUserResponse `json:"users"`
	Pagination UsersPagination     `json:"pagination"`
}

type UserDetails struct {
	AdminUserResponse
	Stats profileDto.UserStats `json:"stats"`
}

// DeletedUser is what survives of a user after the cascade.
type DeletedUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}
