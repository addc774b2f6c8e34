package repository

import (
	"context"

	"mymemorycard.com/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollectionRepository interface {
	Create(ctx context.Context, entry *entity.Collection) error
	FindByUserAndGame(ctx context.Context, userID uuid.UUID, gameID uint) (*entity.Collection, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]entity.Collection, error)
	Update(ctx context.Context, entry *entity.Collection, fields map[string]any) error
	Delete(ctx context.Context, userID uuid.UUID, gameID uint) (bool, error)
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, entry *entity.Collection) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *collectionRepository) FindByUserAndGame(ctx context.Context, userID uuid.UUID, gameID uint) (*entity.Collection, error) {
	var entry entity.Collection
	err := r.db.WithContext(ctx).
		Preload("Game").
		Where("user_id = ? AND game_id = ?", userID, gameID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *collectionRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]entity.Collection, error) {
	query := r.db.WithContext(ctx).
		Preload("Game").
		Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var entries []entity.Collection
	err := query.Order("updated_at desc").Order("id desc").Find(&entries).Error
	return entries, err
}

func (r *collectionRepository) Update(ctx context.Context, entry *entity.Collection, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(entry).Updates(fields).Error
}

func (r *collectionRepository) Delete(ctx context.Context, userID uuid.UUID, gameID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Delete(&entity.Collection{})
	return result.RowsAffected > 0, result.Error
}
