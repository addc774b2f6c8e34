package service_test

import (
	"context"
	"testing"
	"time"

	"mymemorycard.com/backend/internal/entity"
	notifRepo "mymemorycard.com/backend/internal/modules/notification/repository"
	notifService "mymemorycard.com/backend/internal/modules/notification/service"
	progressionRepo "mymemorycard.com/backend/internal/modules/progression/repository"
	progressionService "mymemorycard.com/backend/internal/modules/progression/service"
	"mymemorycard.com/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(db *gorm.DB) (progressionService.ProgressionService, notifService.NotificationService) {
	notifSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	return progressionService.NewProgressionService(progressionRepo.NewProgressionRepository(db), notifSvc), notifSvc
}

func enqueue(t *testing.T, db *gorm.DB, svc progressionService.ProgressionService, userID uuid.UUID, action string) *entity.XPEvent {
	t.Helper()
	event, err := svc.NewEvent(userID, action, uuid.New())
	require.NoError(t, err)
	require.NoError(t, db.Create(event).Error)
	return event
}

func reload(t *testing.T, db *gorm.DB, id uuid.UUID) entity.User {
	t.Helper()
	var u entity.User
	require.NoError(t, db.First(&u, "id = ?", id).Error)
	return u
}

func TestApplyNowGrantsOnce(t *testing.T) {
	db := testutil.NewDB(t)
	svc, _ := newService(db)
	user := testutil.CreateUser(t, db, "gamer")

	event := enqueue(t, db, svc, user.ID, entity.ActionCreateMemory)

	svc.ApplyNow(context.Background(), event.ID)
	svc.ApplyNow(context.Background(), event.ID)

	got := reload(t, db, user.ID)
	assert.Equal(t, 10, got.Exp)
	assert.Equal(t, 1, got.Level)

	var stored entity.XPEvent
	require.NoError(t, db.First(&stored, "id = ?", event.ID).Error)
	assert.NotNil(t, stored.AppliedAt)
	assert.Equal(t, 1, stored.Attempts)
}

func TestApplyNowLevelsUpAndNotifies(t *testing.T) {
	db := testutil.NewDB(t)
	svc, notifSvc := newService(db)
	user := testutil.CreateUser(t, db, "grinder")
	require.NoError(t, db.Model(user).UpdateColumn("exp", 35).Error)

	event := enqueue(t, db, svc, user.ID, entity.ActionCreateReview)
	svc.ApplyNow(context.Background(), event.ID)

	got := reload(t, db, user.ID)
	assert.Equal(t, 55, got.Exp)
	assert.Equal(t, 2, got.Level)

	assert.Eventually(t, func() bool {
		n, err := notifSvc.GetNotifications(context.Background(), user.ID, 10, 0)
		return err == nil && len(n) == 1 && n[0].Type == entity.NotificationLevelUp
	}, 2*time.Second, 20*time.Millisecond)
}

func TestProcessPendingRetriesFailedEvents(t *testing.T) {
	db := testutil.NewDB(t)
	svc, _ := newService(db)
	user := testutil.CreateUser(t, db, "patient")

	// an event whose user row is missing fails and stays pending
	orphan := enqueue(t, db, svc, uuid.New(), entity.ActionCreateMemory)
	svc.ApplyNow(context.Background(), orphan.ID)

	var stored entity.XPEvent
	require.NoError(t, db.First(&stored, "id = ?", orphan.ID).Error)
	assert.Nil(t, stored.AppliedAt)
	assert.Equal(t, 1, stored.Attempts)
	require.NotNil(t, stored.LastError)

	// never applied immediately, picked up by the worker pass
	pending := enqueue(t, db, svc, user.ID, entity.ActionCreateReview)

	applied := svc.ProcessPending(context.Background())
	assert.Equal(t, 1, applied)
	assert.Equal(t, 20, reload(t, db, user.ID).Exp)

	var appliedEvent entity.XPEvent
	require.NoError(t, db.First(&appliedEvent, "id = ?", pending.ID).Error)
	assert.NotNil(t, appliedEvent.AppliedAt)

	var retried entity.XPEvent
	require.NoError(t, db.First(&retried, "id = ?", orphan.ID).Error)
	assert.Equal(t, 2, retried.Attempts)
	assert.Nil(t, retried.AppliedAt)
}

func TestNewEventRejectsUnknownAction(t *testing.T) {
	db := testutil.NewDB(t)
	svc, _ := newService(db)

	_, err := svc.NewEvent(uuid.New(), "DAILY_LOGIN", uuid.New())
	assert.Error(t, err)
}

func TestGetLeaderboard(t *testing.T) {
	db := testutil.NewDB(t)
	svc, _ := newService(db)

	low := testutil.CreateUser(t, db, "low")
	high := testutil.CreateUser(t, db, "high")
	require.NoError(t, db.Model(low).UpdateColumns(map[string]any{"exp": 30}).Error)
	require.NoError(t, db.Model(high).UpdateColumns(map[string]any{"exp": 260, "level": 3}).Error)

	entries, err := svc.GetLeaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "high", entries[0].User.Username)
	assert.Equal(t, 3, entries[0].LevelStatus.Level)
	assert.Equal(t, 24, entries[0].LevelStatus.Progress)
	assert.Equal(t, "low", entries[1].User.Username)
}
