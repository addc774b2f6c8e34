package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"mymemorycard.com/backend/internal/entity"
	commentDto "mymemorycard.com/backend/internal/modules/comment/dto"
	commentRepo "mymemorycard.com/backend/internal/modules/comment/repository"
	commentService "mymemorycard.com/backend/internal/modules/comment/service"
	notifRepo "mymemorycard.com/backend/internal/modules/notification/repository"
	notifService "mymemorycard.com/backend/internal/modules/notification/service"
	"mymemorycard.com/backend/internal/testutil"
	"mymemorycard.com/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T, rdb *redis.Client) (*gorm.DB, commentService.CommentService, notifService.NotificationService) {
	db := testutil.NewDB(t)
	notifs := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	return db, commentService.NewCommentService(commentRepo.NewCommentRepository(db), notifs, rdb, 3*time.Second), notifs
}

func status(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperror.MapErrorToStatus(err)
}

func TestCommentLifecycle(t *testing.T) {
	db, svc, notifs := setup(t, nil)
	author := testutil.CreateUser(t, db, "author")
	reader := testutil.CreateUser(t, db, "reader")
	game := testutil.CreateGame(t, db, 1, "Game")
	review := testutil.CreateReview(t, db, author.ID, game.ID, 4)
	ctx := context.Background()

	comment, err := svc.CreateComment(ctx, reader.ID, commentDto.CreateCommentInput{
		TargetType: entity.TargetReview,
		TargetID:   review.ID.String(),
		Content:    "<em>Totally</em> agree",
	})
	require.NoError(t, err)
	assert.Equal(t, "Totally agree", comment.Content)
	assert.Equal(t, "reader", comment.Author.Username)

	assert.Eventually(t, func() bool {
		n, err := notifs.GetNotifications(ctx, author.ID, 10, 0)
		return err == nil && len(n) == 1 && n[0].Type == entity.NotificationComment
	}, 2*time.Second, 20*time.Millisecond)

	comments, err := svc.GetComments(ctx, entity.TargetReview, review.ID.String())
	require.NoError(t, err)
	require.Len(t, comments, 1)

	_, err = svc.UpdateComment(ctx, author.ID, comment.ID, commentDto.UpdateCommentInput{Content: "hijack"})
	assert.EqualError(t, err, commentService.MsgCommentNotOwned)

	updated, err := svc.UpdateComment(ctx, reader.ID, comment.ID, commentDto.UpdateCommentInput{Content: "Mostly agree"})
	require.NoError(t, err)
	assert.Equal(t, "Mostly agree", updated.Content)

	assert.Equal(t, http.StatusNotFound, status(t, svc.DeleteComment(ctx, author.ID, comment.ID)))
	require.NoError(t, svc.DeleteComment(ctx, reader.ID, comment.ID))

	comments, err = svc.GetComments(ctx, entity.TargetReview, review.ID.String())
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCreateCommentValidation(t *testing.T) {
	db, svc, _ := setup(t, nil)
	user := testutil.CreateUser(t, db, "user")
	ctx := context.Background()

	_, err := svc.CreateComment(ctx, user.ID, commentDto.CreateCommentInput{TargetType: "memory"})
	assert.EqualError(t, err, commentService.MsgMissingFields)

	_, err = svc.CreateComment(ctx, user.ID, commentDto.CreateCommentInput{TargetType: "post", TargetID: uuid.NewString(), Content: "x"})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	_, err = svc.CreateComment(ctx, user.ID, commentDto.CreateCommentInput{TargetType: "memory", TargetID: uuid.NewString(), Content: "<p> </p>"})
	assert.EqualError(t, err, commentService.MsgEmptyComment)

	_, err = svc.CreateComment(ctx, user.ID, commentDto.CreateCommentInput{TargetType: "memory", TargetID: uuid.NewString(), Content: "hello"})
	assert.Equal(t, http.StatusNotFound, status(t, err))
}

func TestCommentIsRateLimited(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	db, svc, _ := setup(t, rdb)
	user := testutil.CreateUser(t, db, "chatty")
	game := testutil.CreateGame(t, db, 1, "Game")
	memory := testutil.CreateMemory(t, db, user.ID, game.ID, "m")
	ctx := context.Background()
	input := commentDto.CreateCommentInput{TargetType: entity.TargetMemory, TargetID: memory.ID.String(), Content: "first"}

	_, err := svc.CreateComment(ctx, user.ID, input)
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, user.ID, input)
	assert.Equal(t, http.StatusTooManyRequests, status(t, err))
}
