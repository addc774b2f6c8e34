package bootstrap

import (
	"errors"

	"mymemorycard.com/backend/internal/entity"
	"mymemorycard.com/backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Game{},
		&entity.Collection{},
		&entity.Memory{},
		&entity.Review{},
		&entity.Comment{},
		&entity.Like{},
		&entity.Follow{},
		&entity.XPEvent{},
		&entity.Notification{},
	)
}

// SeedAdminUser creates the admin account, or promotes an existing account with that email.
func SeedAdminUser(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		logger.Log.Info("SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing entity.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if existing.Role == entity.RoleAdmin {
			logger.Log.Info("Admin user already exists, skipping seed")
			return nil
		}
		return db.Model(&existing).Update("role", entity.RoleAdmin).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		Role:         entity.RoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	logger.Log.WithField("email", email).Info("Admin user seeded")
	return nil
}
