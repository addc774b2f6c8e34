package repository

import (
	"context"

	"mymemorycard.com/backend/internal/entity"
	followDto "mymemorycard.com/backend/internal/modules/follow/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowRepository interface {
	Create(ctx context.Context, follow *entity.Follow) error
	Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Followers(ctx context.Context, userID uuid.UUID) ([]followDto.FollowUser, error)
	Following(ctx context.Context, userID uuid.UUID) ([]followDto.FollowUser, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *entity.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&entity.Follow{})
	return result.RowsAffected > 0, result.Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// list joins follows to users on joinColumn, filtering on the opposite side.
func (r *followRepository) list(ctx context.Context, joinColumn, filterColumn string, userID uuid.UUID) ([]followDto.FollowUser, error) {
	var users []followDto.FollowUser
	err := r.db.WithContext(ctx).
		Table("follows f").
		Select("u.id, u.username, u.avatar_url, u.level, f.created_at AS followed_at").
		Joins("JOIN users u ON u.id = f."+joinColumn).
		Where("f."+filterColumn+" = ?", userID).
		Order("f.created_at DESC").
		Scan(&users).Error
	return users, err
}

func (r *followRepository) Followers(ctx context.Context, userID uuid.UUID) ([]followDto.FollowUser, error) {
	return r.list(ctx, "follower_id", "following_id", userID)
}

func (r *followRepository) Following(ctx context.Context, userID uuid.UUID) ([]followDto.FollowUser, error) {
	return r.list(ctx, "following_id", "follower_id", userID)
}
