package repository

import (
	"context"
	"fmt"

	"mymemorycard.com/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	FindByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]entity.Comment, error)
	UpdateContent(ctx context.Context, id, userID uuid.UUID, content string) (bool, error)
	// Delete removes the comment; a nil userID skips the authorship check.
	Delete(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (bool, error)
	TargetAuthor(ctx context.Context, targetType string, targetID uuid.UUID) (uuid.UUID, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]entity.Comment, error) {
	var comments []entity.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) UpdateContent(ctx context.Context, id, userID uuid.UUID, content string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Comment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("content", content)
	return result.RowsAffected > 0, result.Error
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	result := query.Delete(&entity.Comment{})
	return result.RowsAffected > 0, result.Error
}

func (r *commentRepository) TargetAuthor(ctx context.Context, targetType string, targetID uuid.UUID) (uuid.UUID, error) {
	table, ok := entity.TargetTable(targetType)
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown target type %q", targetType)
	}

	var authors []uuid.UUID
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", targetID).Limit(1).Pluck("user_id", &authors).Error; err != nil {
		return uuid.Nil, err
	}
	if len(authors) == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return authors[0], nil
}
