// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"mymemorycard.com/backend/internal/bootstrap"
	"mymemorycard.com/backend/internal/entity"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory sqlite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

// NewRedis starts a miniredis instance and returns a client bound to it.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()
	user := &entity.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateGame(t *testing.T, db *gorm.DB, rawgID int, name string) *entity.Game {
	t.Helper()
	game := &entity.Game{RawgID: rawgID, Name: name}
	require.NoError(t, db.Create(game).Error)
	return game
}

func CreateMemory(t *testing.T, db *gorm.DB, userID uuid.UUID, gameID uint, title string) *entity.Memory {
	t.Helper()
	memory := &entity.Memory{UserID: userID, GameID: gameID, Title: title, Content: "content of " + title}
	require.NoError(t, db.Create(memory).Error)
	return memory
}

func CreateReview(t *testing.T, db *gorm.DB, userID uuid.UUID, gameID uint, rating int) *entity.Review {
	t.Helper()
	review := &entity.Review{UserID: userID, GameID: gameID, Rating: rating, Title: "review", Content: "solid game"}
	require.NoError(t, db.Create(review).Error)
	return review
}
