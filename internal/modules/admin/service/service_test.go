package service_test

import (
	"context"
	"net/http"
	"testing"

	"mymemorycard.com/backend/internal/entity"
	adminRepo "mymemorycard.com/backend/internal/modules/admin/repository"
	adminService "mymemorycard.com/backend/internal/modules/admin/service"
	commentRepo "mymemorycard.com/backend/internal/modules/comment/repository"
	likeRepo "mymemorycard.com/backend/internal/modules/like/repository"
	likeService "mymemorycard.com/backend/internal/modules/like/service"
	memoryRepo "mymemorycard.com/backend/internal/modules/memory/repository"
	profileRepo "mymemorycard.com/backend/internal/modules/profile/repository"
	reviewRepo "mymemorycard.com/backend/internal/modules/review/repository"
	searchService "mymemorycard.com/backend/internal/modules/search/service"
	userRepo "mymemorycard.com/backend/internal/modules/user/repository"
	"mymemorycard.com/backend/internal/testutil"
	"mymemorycard.com/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(db *gorm.DB) adminService.AdminService {
	return newServiceWithLikes(db, likeService.NewLikeService(likeRepo.NewLikeRepository(db), userRepo.NewUserRepository(db), nil, nil))
}

func newServiceWithLikes(db *gorm.DB, likes likeService.LikeService) adminService.AdminService {
	return adminService.NewAdminService(
		adminRepo.NewAdminRepository(db),
		userRepo.NewUserRepository(db),
		profileRepo.NewStatsRepository(db),
		memoryRepo.NewMemoryRepository(db),
		reviewRepo.NewReviewRepository(db),
		commentRepo.NewCommentRepository(db),
		likes,
		searchService.NewMeiliSearchService(nil),
	)
}

func status(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperror.MapErrorToStatus(err)
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// seedVictim gives a user content of every kind, plus a bystander who interacts with it.
func seedVictim(t *testing.T, db *gorm.DB) (victim, bystander *entity.User) {
	victim = testutil.CreateUser(t, db, "victim")
	bystander = testutil.CreateUser(t, db, "bystander")
	game := testutil.CreateGame(t, db, 1, "Game")

	memory := testutil.CreateMemory(t, db, victim.ID, game.ID, "m")
	review := testutil.CreateReview(t, db, victim.ID, game.ID, 5)
	testutil.CreateMemory(t, db, bystander.ID, game.ID, "kept")

	require.NoError(t, db.Create(&entity.Collection{UserID: victim.ID, GameID: game.ID, Status: entity.StatusPlaying}).Error)
	require.NoError(t, db.Create(&entity.Follow{FollowerID: victim.ID, FollowingID: bystander.ID}).Error)
	require.NoError(t, db.Create(&entity.Follow{FollowerID: bystander.ID, FollowingID: victim.ID}).Error)
	require.NoError(t, db.Create(&entity.Like{UserID: bystander.ID, TargetType: entity.TargetMemory, TargetID: memory.ID}).Error)
	require.NoError(t, db.Create(&entity.Comment{UserID: bystander.ID, TargetType: entity.TargetReview, TargetID: review.ID, Content: "hi"}).Error)
	return victim, bystander
}

func TestDeleteUserCascades(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	admin := testutil.CreateUser(t, db, "admin")
	victim, bystander := seedVictim(t, db)

	deleted, err := svc.DeleteUser(context.Background(), admin.ID, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, victim.ID, deleted.ID)
	assert.Equal(t, "victim", deleted.Username)
	assert.Equal(t, "victim@example.com", deleted.Email)

	assert.EqualValues(t, 0, count(t, db.Where("user_id = ?", victim.ID), &entity.Review{}))
	assert.EqualValues(t, 1, count(t, db, &entity.Memory{}))
	assert.EqualValues(t, 0, count(t, db, &entity.Collection{}))
	assert.EqualValues(t, 0, count(t, db, &entity.Follow{}))
	assert.EqualValues(t, 0, count(t, db, &entity.Like{}))
	assert.EqualValues(t, 0, count(t, db, &entity.Comment{}))
	assert.EqualValues(t, 2, count(t, db, &entity.User{}))

	var kept entity.User
	require.NoError(t, db.First(&kept, "id = ?", bystander.ID).Error)
}

func TestDeleteUserRollsBackOnFailure(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	admin := testutil.CreateUser(t, db, "admin")
	victim, _ := seedVictim(t, db)

	// the follows step fails after reviews and memories were already deleted
	require.NoError(t, db.Migrator().DropTable(&entity.Follow{}))

	_, err := svc.DeleteUser(context.Background(), admin.ID, victim.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperror.MapErrorToStatus(err))

	assert.EqualValues(t, 1, count(t, db, &entity.Review{}))
	assert.EqualValues(t, 2, count(t, db, &entity.Memory{}))
	assert.EqualValues(t, 1, count(t, db, &entity.Collection{}))
	assert.EqualValues(t, 1, count(t, db, &entity.Like{}))
	assert.EqualValues(t, 1, count(t, db, &entity.Comment{}))
	assert.EqualValues(t, 3, count(t, db, &entity.User{}))
}

func TestDeleteUserGuards(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	admin := testutil.CreateUser(t, db, "admin")

	_, err := svc.DeleteUser(context.Background(), admin.ID, admin.ID)
	assert.EqualError(t, err, adminService.MsgSelfDelete)

	_, err = svc.DeleteUser(context.Background(), admin.ID, uuid.New())
	assert.Equal(t, http.StatusNotFound, status(t, err))
	assert.EqualError(t, err, adminService.MsgUserNotFound)
}

func TestGetUsersPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5"} {
		testutil.CreateUser(t, db, name)
	}

	page, err := svc.GetUsers(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.EqualValues(t, 5, page.Pagination.TotalUsers)
	assert.Equal(t, 2, page.Pagination.UsersPerPage)

	last, err := svc.GetUsers(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Users, 1)

	for _, bad := range [][2]int{{0, 10}, {1, 0}, {1, 101}} {
		_, err := svc.GetUsers(context.Background(), bad[0], bad[1])
		assert.EqualError(t, err, adminService.MsgInvalidPaging)
	}
}

func TestStatsDetailsAndModeration(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	victim, bystander := seedVictim(t, db)
	ctx := context.Background()

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalGames)
	assert.EqualValues(t, 2, stats.TotalMemories)
	assert.EqualValues(t, 1, stats.TotalReviews)
	assert.EqualValues(t, 1, stats.TotalCollections)
	assert.EqualValues(t, 1, stats.TotalComments)
	assert.EqualValues(t, 1, stats.TotalLikes)

	details, err := svc.GetUserDetails(ctx, victim.ID)
	require.NoError(t, err)
	assert.Equal(t, "victim@example.com", details.Email)
	assert.EqualValues(t, 1, details.Stats.MemoriesCount)
	assert.EqualValues(t, 1, details.Stats.FollowersCount)

	_, err = svc.GetUserDetails(ctx, uuid.New())
	assert.Equal(t, http.StatusNotFound, status(t, err))

	var comment entity.Comment
	require.NoError(t, db.First(&comment, "user_id = ?", bystander.ID).Error)
	require.NoError(t, svc.DeleteComment(ctx, comment.ID))
	assert.EqualError(t, svc.DeleteComment(ctx, comment.ID), adminService.MsgCommentNotFound)

	var memory entity.Memory
	require.NoError(t, db.First(&memory, "user_id = ?", victim.ID).Error)
	require.NoError(t, svc.DeleteMemory(ctx, memory.ID))
	assert.EqualError(t, svc.DeleteMemory(ctx, memory.ID), adminService.MsgMemoryNotFound)
	assert.EqualValues(t, 0, count(t, db, &entity.Like{}))

	assert.EqualError(t, svc.DeleteReview(ctx, uuid.New()), adminService.MsgReviewNotFound)
}

func TestDeleteUserDropsLikeCounters(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	likes := likeService.NewLikeService(likeRepo.NewLikeRepository(db), userRepo.NewUserRepository(db), nil, rdb)
	svc := newServiceWithLikes(db, likes)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin")
	victim, bystander := seedVictim(t, db)

	var victimMemory entity.Memory
	require.NoError(t, db.First(&victimMemory, "user_id = ?", victim.ID).Error)
	var keptMemory entity.Memory
	require.NoError(t, db.First(&keptMemory, "user_id = ?", bystander.ID).Error)
	require.NoError(t, db.Create(&entity.Like{UserID: victim.ID, TargetType: entity.TargetMemory, TargetID: keptMemory.ID}).Error)

	// warm the cached counters
	n, err := likes.Count(ctx, entity.TargetMemory, keptMemory.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, err = likes.Count(ctx, entity.TargetMemory, victimMemory.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = svc.DeleteUser(ctx, admin.ID, victim.ID)
	require.NoError(t, err)

	n, err = likes.Count(ctx, entity.TargetMemory, keptMemory.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	assert.Zero(t, rdb.Exists(ctx, "likes:count:memory:"+victimMemory.ID.String()).Val())
}
