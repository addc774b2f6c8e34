package repository

import (
	"context"
	"time"

	"mymemorycard.com/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewRow is a review joined with its author, its game and its counters.
type ReviewRow struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	GameID              uint
	Rating              int
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

type ReviewFilter struct {
	UserID *uuid.UUID
	GameID *uint
}

type ReviewRepository interface {
	CreateWithEvent(ctx context.Context, review *entity.Review, event *entity.XPEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindByUserAndGame(ctx context.Context, userID uuid.UUID, gameID uint) (*entity.Review, error)
	GetRow(ctx context.Context, id uuid.UUID) (*ReviewRow, error)
	List(ctx context.Context, filter ReviewFilter, sort string, limit, offset int) ([]ReviewRow, error)
	Update(ctx context.Context, review *entity.Review, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `rv.id, rv.user_id, rv.game_id, rv.rating, rv.title, rv.content, rv.spoiler, rv.created_at, rv.updated_at,
	u.username AS author_username, u.avatar_url AS author_avatar_url, u.level AS author_level,
	g.rawg_id AS game_rawg_id, g.name AS game_name, g.background_image AS game_background_image, g.cover_url AS game_cover_url,
	(SELECT COUNT(*) FROM likes l WHERE l.target_type = 'review' AND l.target_id = rv.id) AS likes_count,
	(SELECT COUNT(*) FROM comments c WHERE c.target_type = 'review' AND c.target_id = rv.id) AS comments_count`

func (r *reviewRepository) rows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("reviews AS rv").
		Select(reviewColumns).
		Joins("JOIN users u ON u.id = rv.user_id").
		Joins("JOIN games g ON g.id = rv.game_id")
}

func (r *reviewRepository) CreateWithEvent(ctx context.Context, review *entity.Review, event *entity.XPEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	var review entity.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByUserAndGame(ctx context.Context, userID uuid.UUID, gameID uint) (*entity.Review, error) {
	var review entity.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetRow(ctx context.Context, id uuid.UUID) (*ReviewRow, error) {
	var rows []ReviewRow
	if err := r.rows(ctx).Where("rv.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter, sort string, limit, offset int) ([]ReviewRow, error) {
	query := r.rows(ctx)
	if filter.UserID != nil {
		query = query.Where("rv.user_id = ?", *filter.UserID)
	}
	if filter.GameID != nil {
		query = query.Where("rv.game_id = ?", *filter.GameID)
	}
	if sort == "top_rated" {
		query = query.Order("rv.rating DESC")
	}

	var rows []ReviewRow
	err := query.
		Order("rv.created_at DESC").
		Order("rv.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(review).Updates(fields).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target := "target_type = ? AND target_id = ?"
		if err := tx.Where(target, entity.TargetReview, id).Delete(&entity.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where(target, entity.TargetReview, id).Delete(&entity.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.Review{})
		deleted = result.RowsAffected > 0
		return result.Error
	})
	return deleted, err
}
