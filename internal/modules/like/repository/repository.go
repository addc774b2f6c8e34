package repository

import (
	"context"
	"fmt"

	"mymemorycard.com/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository interface {
	Create(ctx context.Context, like *entity.Like) error
	Delete(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error)
	Count(ctx context.Context, targetType string, targetID uuid.UUID) (int64, error)
	ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]entity.Like, error)
	// TargetAuthor returns the author of a memory or review, gorm.ErrRecordNotFound when it does not exist.
	TargetAuthor(ctx context.Context, targetType string, targetID uuid.UUID) (uuid.UUID, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, like *entity.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Delete(&entity.Like{})
	return result.RowsAffected > 0, result.Error
}

func (r *likeRepository) Exists(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error) {
	// Find with a slice avoids gorm's "record not found" log noise
	var existing []entity.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Limit(1).
		Find(&existing).Error
	return len(existing) > 0, err
}

func (r *likeRepository) Count(ctx context.Context, targetType string, targetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Like{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	return count, err
}

func (r *likeRepository) ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]entity.Like, error) {
	var likes []entity.Like
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Find(&likes).Error
	return likes, err
}

func (r *likeRepository) TargetAuthor(ctx context.Context, targetType string, targetID uuid.UUID) (uuid.UUID, error) {
	table, ok := entity.TargetTable(targetType)
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown target type %q", targetType)
	}

	var authors []uuid.UUID
	err := r.db.WithContext(ctx).Table(table).Where("id = ?", targetID).Limit(1).Pluck("user_id", &authors).Error
	if err != nil {
		return uuid.Nil, err
	}
	if len(authors) == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return authors[0], nil
}
