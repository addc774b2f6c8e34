package repository

import (
	"context"

	"mymemorycard.com/backend/internal/entity"
	adminDto "mymemorycard.com/backend/internal/modules/admin/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentIDs lists what a user authored, captured before a cascade so the
// search index can be cleaned once the transaction has committed.
// LikedMemories and LikedReviews are the targets of the user's own likes, whose
// cached counters go stale once the cascade removes those likes.
type ContentIDs struct {
	Memories      []uuid.UUID
	Reviews       []uuid.UUID
	LikedMemories []uuid.UUID
	LikedReviews  []uuid.UUID
}

type AdminRepository interface {
	GlobalStats(ctx context.Context) (*adminDto.GlobalStats, error)
	ListUsers(ctx context.Context, limit, offset int) ([]entity.User, int64, error)
	AuthoredContent(ctx context.Context, userID uuid.UUID) (*ContentIDs, error)
	// DeleteUserCascade removes the user and everything referencing it in one transaction.
	// It returns gorm.ErrRecordNotFound, with nothing deleted, when the user does not exist.
	DeleteUserCascade(ctx context.Context, userID uuid.UUID) (*adminDto.DeletedUser, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) GlobalStats(ctx context.Context) (*adminDto.GlobalStats, error) {
	var stats adminDto.GlobalStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM games) AS total_games,
			(SELECT COUNT(*) FROM memories) AS total_memories,
			(SELECT COUNT(*) FROM reviews) AS total_reviews,
			(SELECT COUNT(*) FROM collections) AS total_collections,
			(SELECT COUNT(*) FROM comments) AS total_comments,
			(SELECT COUNT(*) FROM likes) AS total_likes
	`).Scan(&stats).Error
	return &stats, err
}

func (r *adminRepository) ListUsers(ctx context.Context, limit, offset int) ([]entity.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []entity.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, total, err
}

func (r *adminRepository) AuthoredContent(ctx context.Context, userID uuid.UUID) (*ContentIDs, error) {
	ids := &ContentIDs{}
	db := r.db.WithContext(ctx)
	if err := db.Model(&entity.Memory{}).Where("user_id = ?", userID).Pluck("id", &ids.Memories).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Review{}).Where("user_id = ?", userID).Pluck("id", &ids.Reviews).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Like{}).Where("user_id = ? AND target_type = ?", userID, entity.TargetMemory).Pluck("target_id", &ids.LikedMemories).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Like{}).Where("user_id = ? AND target_type = ?", userID, entity.TargetReview).Pluck("target_id", &ids.LikedReviews).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *adminRepository) DeleteUserCascade(ctx context.Context, userID uuid.UUID) (*adminDto.DeletedUser, error) {
	var deleted adminDto.DeletedUser

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entity.User
		if err := tx.Select("id", "username", "email").First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		memories := tx.Model(&entity.Memory{}).Select("id").Where("user_id = ?", userID)
		reviews := tx.Model(&entity.Review{}).Select("id").Where("user_id = ?", userID)

		steps := []struct {
			model any
			where string
			args  []any
		}{
			// reactions to the user's content, then the user's own reactions
			{&entity.Like{}, "target_type = ? AND target_id IN (?)", []any{entity.TargetMemory, memories}},
			{&entity.Like{}, "target_type = ? AND target_id IN (?)", []any{entity.TargetReview, reviews}},
			{&entity.Comment{}, "target_type = ? AND target_id IN (?)", []any{entity.TargetMemory, memories}},
			{&entity.Comment{}, "target_type = ? AND target_id IN (?)", []any{entity.TargetReview, reviews}},
			{&entity.Like{}, "user_id = ?", []any{userID}},
			{&entity.Comment{}, "user_id = ?", []any{userID}},
			{&entity.Review{}, "user_id = ?", []any{userID}},
			{&entity.Memory{}, "user_id = ?", []any{userID}},
			{&entity.Collection{}, "user_id = ?", []any{userID}},
			{&entity.Follow{}, "follower_id = ? OR following_id = ?", []any{userID, userID}},
			{&entity.XPEvent{}, "user_id = ?", []any{userID}},
			{&entity.Notification{}, "user_id = ? OR actor_id = ?", []any{userID, userID}},
		}
		for _, step := range steps {
			if err := tx.Where(step.where, step.args...).Delete(step.model).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&entity.User{}, "id = ?", userID).Error; err != nil {
			return err
		}

		deleted = adminDto.DeletedUser{ID: user.ID, Username: user.Username, Email: user.Email}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
