package dto

import (
	"time"

	"mymemorycard.com/backend/internal/entity"
	"github.com/google/uuid"
)

type SignupInput struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the account block returned by the auth endpoints.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url"`
	BannerURL *string   `json:"banner_url"`
	Bio       *string   `json:"bio"`
	Role      string    `json:"role"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		BannerURL: u.BannerURL,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}
