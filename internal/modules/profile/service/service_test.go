package profile_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"mymemorycard.com/backend/internal/entity"
	profileDto "mymemorycard.com/backend/internal/modules/profile/dto"
	profileRepo "mymemorycard.com/backend/internal/modules/profile/repository"
	profile "mymemorycard.com/backend/internal/modules/profile/service"
	userRepo "mymemorycard.com/backend/internal/modules/user/repository"
	"mymemorycard.com/backend/internal/testutil"
	"mymemorycard.com/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryStorage struct {
	uploaded []string
	deleted  []string
}

func (m *memoryStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	body, _ := io.ReadAll(r)
	url := "https://res.cloudinary.com/demo/image/upload/" + folder + "/" + fileName + "?" + string(body)
	m.uploaded = append(m.uploaded, url)
	return url, nil
}

func (m *memoryStorage) DeleteImage(ctx context.Context, fileURL string) error {
	m.deleted = append(m.deleted, fileURL)
	return nil
}

func newService(t *testing.T, storage *memoryStorage) (profile.ProfileService, *gorm.DB) {
	db := testutil.NewDB(t)
	var svc profile.ProfileService
	if storage != nil {
		svc = profile.NewProfileService(userRepo.NewUserRepository(db), profileRepo.NewStatsRepository(db), storage)
	} else {
		svc = profile.NewProfileService(userRepo.NewUserRepository(db), profileRepo.NewStatsRepository(db), nil)
	}
	return svc, db
}

func strPtr(s string) *string { return &s }

func TestGetCurrentProfileIncludesProgression(t *testing.T) {
	svc, db := newService(t, nil)
	user := testutil.CreateUser(t, db, "mario")
	require.NoError(t, db.Model(user).UpdateColumns(map[string]any{"exp": 120, "level": 2}).Error)

	me, err := svc.GetCurrentProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "mario", me.Username)
	assert.Equal(t, 2, me.Level)
	assert.Equal(t, 46, me.Progress)
	assert.Equal(t, 200, me.NextLevelExp)

	_, err = svc.GetCurrentProfile(context.Background(), uuid.New())
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestUpdateProfile(t *testing.T) {
	storage := &memoryStorage{}
	svc, db := newService(t, storage)
	user := testutil.CreateUser(t, db, "luigi")
	testutil.CreateUser(t, db, "peach")

	_, err := svc.UpdateProfile(context.Background(), user.ID, profileDto.UpdateProfileInput{Username: strPtr("peach")}, nil, nil)
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))

	me, err := svc.UpdateProfile(context.Background(), user.ID, profileDto.UpdateProfileInput{
		Username: strPtr("green_luigi"),
		Bio:      strPtr("<b>Player</b> two"),
	}, &profileDto.ImageFile{Reader: strings.NewReader("v1"), FileName: "a.png"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "green_luigi", me.Username)
	require.NotNil(t, me.Bio)
	assert.Equal(t, "Player two", *me.Bio)
	require.NotNil(t, me.AvatarURL)
	firstAvatar := *me.AvatarURL

	// replacing the avatar removes the previous upload
	_, err = svc.UpdateProfile(context.Background(), user.ID, profileDto.UpdateProfileInput{},
		&profileDto.ImageFile{Reader: strings.NewReader("v2"), FileName: "b.png"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{firstAvatar}, storage.deleted)

	var stored entity.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "green_luigi", stored.Username)
	assert.Contains(t, *stored.AvatarURL, "b.png")

	// an empty bio clears it
	me, err = svc.UpdateProfile(context.Background(), user.ID, profileDto.UpdateProfileInput{Bio: strPtr("  ")}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, me.Bio)
}

func TestUpdateProfileWithoutStorage(t *testing.T) {
	svc, db := newService(t, nil)
	user := testutil.CreateUser(t, db, "toad")

	_, err := svc.UpdateProfile(context.Background(), user.ID, profileDto.UpdateProfileInput{},
		nil, &profileDto.ImageFile{Reader: strings.NewReader("x"), FileName: "banner.png"})
	assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))
}

func TestSearchUsers(t *testing.T) {
	svc, db := newService(t, nil)
	testutil.CreateUser(t, db, "Kirby")
	testutil.CreateUser(t, db, "metaknight")
	testutil.CreateUser(t, db, "king_dedede")

	users, err := svc.SearchUsers(context.Background(), "K", 10)
	require.NoError(t, err)
	require.Len(t, users, 3)
	// prefix matches rank first
	assert.Equal(t, "Kirby", users[0].Username)
	assert.Equal(t, "king_dedede", users[1].Username)
	assert.Equal(t, "metaknight", users[2].Username)

	users, err = svc.SearchUsers(context.Background(), "g_d", 10)
	require.NoError(t, err)
	require.Len(t, users, 1)

	_, err = svc.SearchUsers(context.Background(), " ", 10)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestGetUserStatsAndPublicProfile(t *testing.T) {
	svc, db := newService(t, nil)
	author := testutil.CreateUser(t, db, "author")
	fan := testutil.CreateUser(t, db, "fan")
	game := testutil.CreateGame(t, db, 10, "Okami")
	other := testutil.CreateGame(t, db, 11, "Ico")

	memory := testutil.CreateMemory(t, db, author.ID, game.ID, "sun")
	review := testutil.CreateReview(t, db, author.ID, game.ID, 5)
	testutil.CreateReview(t, db, author.ID, other.ID, 4)
	require.NoError(t, db.Create(&entity.Collection{UserID: author.ID, GameID: game.ID, Status: entity.StatusCompleted}).Error)
	require.NoError(t, db.Create(&entity.Collection{UserID: author.ID, GameID: other.ID, Status: entity.StatusPlaying}).Error)
	require.NoError(t, db.Create(&entity.Follow{FollowerID: fan.ID, FollowingID: author.ID}).Error)
	require.NoError(t, db.Create(&entity.Like{UserID: fan.ID, TargetType: entity.TargetMemory, TargetID: memory.ID}).Error)
	require.NoError(t, db.Create(&entity.Like{UserID: fan.ID, TargetType: entity.TargetReview, TargetID: review.ID}).Error)
	// a like on someone else's content does not count
	fanMemory := testutil.CreateMemory(t, db, fan.ID, game.ID, "mine")
	require.NoError(t, db.Create(&entity.Like{UserID: author.ID, TargetType: entity.TargetMemory, TargetID: fanMemory.ID}).Error)

	stats, err := svc.GetUserStats(context.Background(), author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.MemoriesCount)
	assert.EqualValues(t, 2, stats.ReviewsCount)
	assert.EqualValues(t, 2, stats.CollectionCount)
	assert.EqualValues(t, 1, stats.CollectionByStatus[entity.StatusCompleted])
	assert.EqualValues(t, 0, stats.CollectionByStatus[entity.StatusWishlist])
	assert.EqualValues(t, 1, stats.FollowersCount)
	assert.EqualValues(t, 0, stats.FollowingCount)
	assert.EqualValues(t, 2, stats.LikesReceived)
	assert.Equal(t, 4.5, stats.AverageReviewRating)

	public, err := svc.GetPublicProfile(context.Background(), author.ID, &fan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, public.FollowersCount)
	require.NotNil(t, public.IsFollowing)
	assert.True(t, *public.IsFollowing)

	public, err = svc.GetPublicProfile(context.Background(), author.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, public.IsFollowing)
}
