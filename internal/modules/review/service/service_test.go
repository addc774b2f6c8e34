package service_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"mymemorycard.com/backend/internal/entity"
	gameRepo "mymemorycard.com/backend/internal/modules/game/repository"
	gameService "mymemorycard.com/backend/internal/modules/game/service"
	notifRepo "mymemorycard.com/backend/internal/modules/notification/repository"
	notifService "mymemorycard.com/backend/internal/modules/notification/service"
	progressionRepo "mymemorycard.com/backend/internal/modules/progression/repository"
	progressionService "mymemorycard.com/backend/internal/modules/progression/service"
	reviewDto "mymemorycard.com/backend/internal/modules/review/dto"
	reviewRepo "mymemorycard.com/backend/internal/modules/review/repository"
	reviewService "mymemorycard.com/backend/internal/modules/review/service"
	searchService "mymemorycard.com/backend/internal/modules/search/service"
	"mymemorycard.com/backend/internal/testutil"
	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(db *gorm.DB) reviewService.ReviewService {
	games := gameRepo.NewGameRepository(db)
	notifSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	return reviewService.NewReviewService(
		reviewRepo.NewReviewRepository(db),
		games,
		gameService.NewGameService(games, testutil.StubCatalog{}, nil, nil),
		progressionService.NewProgressionService(progressionRepo.NewProgressionRepository(db), notifSvc),
		searchService.NewMeiliSearchService(nil),
		nil,
		0,
	)
}

func status(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperror.MapErrorToStatus(err)
}

func intPtr(v int) *int { return &v }

func input(gameID, rating int) reviewDto.CreateReviewInput {
	return reviewDto.CreateReviewInput{GameID: gameID, Rating: rating, Title: "Verdict", Content: "Worth every hour"}
}

func TestCreateReviewGrantsTwentyExperience(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	user := testutil.CreateUser(t, db, "critic")

	review, err := svc.CreateReview(context.Background(), user.ID, input(3328, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "critic", review.Author.Username)
	assert.Equal(t, 3328, review.Game.RawgID)

	var stored entity.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, 20, stored.Exp)
	assert.Equal(t, 1, stored.Level)
}

func TestOneReviewPerUserAndGame(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	user := testutil.CreateUser(t, db, "critic")

	_, err := svc.CreateReview(context.Background(), user.ID, input(1, 4))
	require.NoError(t, err)

	_, err = svc.CreateReview(context.Background(), user.ID, input(1, 2))
	assert.Equal(t, http.StatusConflict, status(t, err))
	assert.EqualError(t, err, reviewService.MsgAlreadyReviewed)

	var stored entity.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, 20, stored.Exp)
}

func TestConcurrentReviewsKeepOne(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	user := testutil.CreateUser(t, db, "racer")
	testutil.CreateGame(t, db, 9, "Race")

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateReview(context.Background(), user.ID, input(9, 3))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, db.Model(&entity.Review{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateReviewValidation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	user := testutil.CreateUser(t, db, "critic")
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, user.ID, reviewDto.CreateReviewInput{GameID: 1, Title: "t", Content: "c"})
	assert.EqualError(t, err, reviewService.MsgMissingFields)

	_, err = svc.CreateReview(ctx, user.ID, input(1, 6))
	assert.EqualError(t, err, reviewService.MsgRatingRange)

	_, err = svc.CreateReview(ctx, user.ID, input(1, -1))
	assert.Equal(t, http.StatusBadRequest, status(t, err))
}

func TestReviewFeedsSortByRating(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	game := testutil.CreateGame(t, db, 50, "Game")
	low := testutil.CreateReview(t, db, testutil.CreateUser(t, db, "a").ID, game.ID, 2)
	high := testutil.CreateReview(t, db, testutil.CreateUser(t, db, "b").ID, game.ID, 5)
	require.NoError(t, db.Model(high).UpdateColumn("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	ctx := context.Background()

	recent, err := svc.GetReviews(ctx, dto.FeedQuery{Sort: "recent", Limit: 10})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, low.ID, recent[0].ID)

	top, err := svc.GetReviews(ctx, dto.FeedQuery{Sort: "top_rated", Limit: 10})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, high.ID, top[0].ID)

	byGame, err := svc.GetGameReviews(ctx, 50, dto.FeedQuery{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byGame, 2)

	_, err = svc.GetReview(ctx, uuid.New())
	assert.EqualError(t, err, reviewService.MsgReviewNotFound)
}

func TestUpdateAndDeleteReview(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	owner := testutil.CreateUser(t, db, "owner")
	other := testutil.CreateUser(t, db, "other")
	game := testutil.CreateGame(t, db, 1, "Game")
	review := testutil.CreateReview(t, db, owner.ID, game.ID, 3)
	ctx := context.Background()

	_, err := svc.UpdateReview(ctx, other.ID, review.ID, reviewDto.UpdateReviewInput{Rating: intPtr(1)})
	assert.Equal(t, http.StatusForbidden, status(t, err))

	_, err = svc.UpdateReview(ctx, owner.ID, review.ID, reviewDto.UpdateReviewInput{Rating: intPtr(0)})
	assert.EqualError(t, err, reviewService.MsgRatingRange)

	updated, err := svc.UpdateReview(ctx, owner.ID, review.ID, reviewDto.UpdateReviewInput{Rating: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)

	require.NoError(t, db.Create(&entity.Comment{UserID: other.ID, TargetType: entity.TargetReview, TargetID: review.ID, Content: "agreed"}).Error)

	assert.Equal(t, http.StatusForbidden, status(t, svc.DeleteReview(ctx, other.ID, review.ID)))
	require.NoError(t, svc.DeleteReview(ctx, owner.ID, review.ID))

	var comments int64
	require.NoError(t, db.Model(&entity.Comment{}).Count(&comments).Error)
	assert.Zero(t, comments)
}
