package repository

import (
	"context"
	"time"

	"mymemorycard.com/backend/internal/entity"
	"gorm.io/gorm"
)

type GameRepository interface {
	FindByRawgID(ctx context.Context, rawgID int) (*entity.Game, error)
	FindByIDs(ctx context.Context, ids []uint) ([]entity.Game, error)
	Create(ctx context.Context, game *entity.Game) error
	List(ctx context.Context, limit, offset int) ([]entity.Game, error)
	Count(ctx context.Context) (int64, error)
	TopRated(ctx context.Context, limit int) ([]GameScore, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]GameScore, error)
}

// GameScore is one ranked row: Score is the average rating or the activity count.
type GameScore struct {
	GameID uint
	Score  float64
	Count  int64
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) FindByRawgID(ctx context.Context, rawgID int) (*entity.Game, error) {
	var game entity.Game
	if err := r.db.WithContext(ctx).Where("rawg_id = ?", rawgID).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.Game, error) {
	var games []entity.Game
	if len(ids) == 0 {
		return games, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&games).Error
	return games, err
}

func (r *gameRepository) Create(ctx context.Context, game *entity.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

func (r *gameRepository) List(ctx context.Context, limit, offset int) ([]entity.Game, error) {
	var games []entity.Game
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&games).Error
	return games, err
}

func (r *gameRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Game{}).Count(&count).Error
	return count, err
}

func (r *gameRepository) TopRated(ctx context.Context, limit int) ([]GameScore, error) {
	var scores []GameScore
	err := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Select("game_id, AVG(rating) AS score, COUNT(*) AS count").
		Group("game_id").
		Order("score desc").
		Order("count desc").
		Order("game_id asc").
		Limit(limit).
		Scan(&scores).Error
	return scores, err
}

func (r *gameRepository) Trending(ctx context.Context, since time.Time, limit int) ([]GameScore, error) {
	query := `
		SELECT game_id, COUNT(*) AS score, COUNT(*) AS count
		FROM (
			SELECT game_id FROM collections WHERE created_at >= @since
			UNION ALL
			SELECT game_id FROM memories WHERE created_at >= @since
			UNION ALL
			SELECT game_id FROM reviews WHERE created_at >= @since
		) activity
		GROUP BY game_id
		ORDER BY count DESC, game_id DESC
		LIMIT @limit
	`

	var scores []GameScore
	err := r.db.WithContext(ctx).
		Raw(query, map[string]any{"since": since, "limit": limit}).
		Scan(&scores).Error
	return scores, err
}
