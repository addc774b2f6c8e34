package repository

import (
	"context"
	"time"

	"mymemorycard.com/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryRow is a memory joined with its author, its game and its counters.
type MemoryRow struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	GameID              uint
	Title               string
	Content             string
	Spoiler             bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	AuthorUsername      string
	AuthorAvatarURL     *string
	AuthorLevel         int
	GameRawgID          int
	GameName            string
	GameBackgroundImage *string
	GameCoverURL        *string
	LikesCount          int64
	CommentsCount       int64
}

type MemoryFilter struct {
	UserID *uuid.UUID
	GameID *uint
}

type MemoryRepository interface {
	// CreateWithEvent commits the memory and its experience event together.
	CreateWithEvent(ctx context.Context, memory *entity.Memory, event *entity.XPEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Memory, error)
	GetRow(ctx context.Context, id uuid.UUID) (*MemoryRow, error)
	List(ctx context.Context, filter MemoryFilter, sort string, limit, offset int) ([]MemoryRow, error)
	Update(ctx context.Context, memory *entity.Memory, fields map[string]any) error
	// Delete removes the memory with its likes and comments.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type memoryRepository struct {
	db *gorm.DB
}

func NewMemoryRepository(db *gorm.DB) MemoryRepository {
	return &memoryRepository{db: db}
}

const memoryColumns = `m.id, m.user_id, m.game_id, m.title, m.content, m.spoiler, m.created_at, m.updated_at,
	u.username AS author_username, u.avatar_url AS author_avatar_url, u.level AS author_level,
	g.rawg_id AS game_rawg_id, g.name AS game_name, g.background_image AS game_background_image, g.cover_url AS game_cover_url,
	(SELECT COUNT(*) FROM likes l WHERE l.target_type = 'memory' AND l.target_id = m.id) AS likes_count,
	(SELECT COUNT(*) FROM comments c WHERE c.target_type = 'memory' AND c.target_id = m.id) AS comments_count`

func (r *memoryRepository) rows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("memories AS m").
		Select(memoryColumns).
		Joins("JOIN users u ON u.id = m.user_id").
		Joins("JOIN games g ON g.id = m.game_id")
}

func (r *memoryRepository) CreateWithEvent(ctx context.Context, memory *entity.Memory, event *entity.XPEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(memory).Error; err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Memory, error) {
	var memory entity.Memory
	if err := r.db.WithContext(ctx).First(&memory, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &memory, nil
}

func (r *memoryRepository) GetRow(ctx context.Context, id uuid.UUID) (*MemoryRow, error) {
	var rows []MemoryRow
	if err := r.rows(ctx).Where("m.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *memoryRepository) List(ctx context.Context, filter MemoryFilter, sort string, limit, offset int) ([]MemoryRow, error) {
	query := r.rows(ctx)
	if filter.UserID != nil {
		query = query.Where("m.user_id = ?", *filter.UserID)
	}
	if filter.GameID != nil {
		query = query.Where("m.game_id = ?", *filter.GameID)
	}
	if sort == "popular" {
		query = query.Order("likes_count DESC")
	}

	var rows []MemoryRow
	err := query.
		Order("m.created_at DESC").
		Order("m.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

func (r *memoryRepository) Update(ctx context.Context, memory *entity.Memory, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(memory).Updates(fields).Error
}

func (r *memoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target := "target_type = ? AND target_id = ?"
		if err := tx.Where(target, entity.TargetMemory, id).Delete(&entity.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where(target, entity.TargetMemory, id).Delete(&entity.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.Memory{})
		deleted = result.RowsAffected > 0
		return result.Error
	})
	return deleted, err
}
