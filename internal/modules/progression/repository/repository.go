package repository

import (
	"context"
	"time"

	"mymemorycard.com/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplyResult describes the effect of applying one XP event.
type ApplyResult struct {
	Applied       bool
	UserID        uuid.UUID
	Exp           int
	PreviousLevel int
	NewLevel      int
}

type ProgressionRepository interface {
	// ApplyEvent adds the event's amount to the user's exp and marks it applied, in one transaction.
	// Applying an already applied event is a no-op.
	ApplyEvent(ctx context.Context, eventID uuid.UUID, levelFor func(exp int) int) (*ApplyResult, error)
	RecordFailure(ctx context.Context, eventID uuid.UUID, cause error) error
	ListPending(ctx context.Context, maxAttempts, limit int) ([]entity.XPEvent, error)
	GetTopUsers(ctx context.Context, limit int) ([]entity.User, error)
}

type progressionRepository struct {
	db *gorm.DB
}

func NewProgressionRepository(db *gorm.DB) ProgressionRepository {
	return &progressionRepository{db: db}
}

func (r *progressionRepository) ApplyEvent(ctx context.Context, eventID uuid.UUID, levelFor func(exp int) int) (*ApplyResult, error) {
	result := &ApplyResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event entity.XPEvent
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			return err
		}
		result.UserID = event.UserID

		// 1. Claim the event; a concurrent applier loses here
		claim := tx.Model(&entity.XPEvent{}).
			Where("id = ? AND applied_at IS NULL", eventID).
			Updates(map[string]any{
				"applied_at": time.Now(),
				"attempts":   gorm.Expr("attempts + ?", 1),
				"last_error": nil,
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return nil
		}

		var before entity.User
		if err := tx.Select("id", "exp", "level").First(&before, "id = ?", event.UserID).Error; err != nil {
			return err
		}

		// 2. Increment first so the row is locked before the level is derived
		if err := tx.Model(&entity.User{}).
			Where("id = ?", event.UserID).
			UpdateColumn("exp", gorm.Expr("exp + ?", event.Amount)).Error; err != nil {
			return err
		}

		var after entity.User
		if err := tx.Select("id", "exp", "level").First(&after, "id = ?", event.UserID).Error; err != nil {
			return err
		}

		// 3. Persist the level only when it changed
		newLevel := levelFor(after.Exp)
		if newLevel != after.Level {
			if err := tx.Model(&entity.User{}).
				Where("id = ?", event.UserID).
				UpdateColumn("level", newLevel).Error; err != nil {
				return err
			}
		}

		result.Applied = true
		result.Exp = after.Exp
		result.PreviousLevel = before.Level
		result.NewLevel = newLevel
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *progressionRepository) RecordFailure(ctx context.Context, eventID uuid.UUID, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}

	return r.db.WithContext(ctx).
		Model(&entity.XPEvent{}).
		Where("id = ? AND applied_at IS NULL", eventID).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + ?", 1),
			"last_error": msg,
		}).Error
}

func (r *progressionRepository) ListPending(ctx context.Context, maxAttempts, limit int) ([]entity.XPEvent, error) {
	var events []entity.XPEvent
	err := r.db.WithContext(ctx).
		Where("applied_at IS NULL AND attempts < ?", maxAttempts).
		Order("created_at asc").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *progressionRepository) GetTopUsers(ctx context.Context, limit int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Select("id", "username", "avatar_url", "exp", "level").
		Order("exp desc").
		Order("created_at asc").
		Limit(limit).
		Find(&users).Error
	return users, err
}
