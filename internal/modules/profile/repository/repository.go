package repository

import (
	"context"
	"database/sql"

	"mymemorycard.com/backend/internal/entity"
	profileDto "mymemorycard.com/backend/internal/modules/profile/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsRepository computes activity aggregates for one user.
type StatsRepository interface {
	GetUserStats(ctx context.Context, userID uuid.UUID) (*profileDto.UserStats, error)
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) GetUserStats(ctx context.Context, userID uuid.UUID) (*profileDto.UserStats, error) {
	db := r.db.WithContext(ctx)
	stats := &profileDto.UserStats{CollectionByStatus: make(map[string]int64, len(entity.CollectionStatuses))}
	for _, status := range entity.CollectionStatuses {
		stats.CollectionByStatus[status] = 0
	}

	counts := []struct {
		model any
		where string
		dest  *int64
	}{
		{&entity.Memory{}, "user_id = ?", &stats.MemoriesCount},
		{&entity.Review{}, "user_id = ?", &stats.ReviewsCount},
		{&entity.Comment{}, "user_id = ?", &stats.CommentsCount},
		{&entity.Collection{}, "user_id = ?", &stats.CollectionCount},
		{&entity.Follow{}, "following_id = ?", &stats.FollowersCount},
		{&entity.Follow{}, "follower_id = ?", &stats.FollowingCount},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, userID).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var byStatus []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&entity.Collection{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.CollectionByStatus[row.Status] = row.Total
	}

	if err := db.Model(&entity.Like{}).
		Where("(target_type = ? AND target_id IN (?)) OR (target_type = ? AND target_id IN (?))",
			entity.TargetMemory, db.Model(&entity.Memory{}).Select("id").Where("user_id = ?", userID),
			entity.TargetReview, db.Model(&entity.Review{}).Select("id").Where("user_id = ?", userID),
		).
		Count(&stats.LikesReceived).Error; err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	if err := db.Model(&entity.Review{}).
		Select("AVG(rating)").
		Where("user_id = ?", userID).
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AverageReviewRating = float64(int(avg.Float64*100+0.5)) / 100
	}

	return stats, nil
}

func (r *statsRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}
