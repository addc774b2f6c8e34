package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mymemorycard.com/backend/internal/entity"
	gameRepo "mymemorycard.com/backend/internal/modules/game/repository"
	gameService "mymemorycard.com/backend/internal/modules/game/service"
	"mymemorycard.com/backend/internal/providers"
	"mymemorycard.com/backend/internal/testutil"
	"mymemorycard.com/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	detailCalls atomic.Int32
	searchCalls atomic.Int32
	games       map[int]providers.RawgGame
	failSearch  bool
	failDetails bool
}

func (f *fakeCatalog) SearchGames(ctx context.Context, query string, page, pageSize int) (*providers.RawgSearchResponse, error) {
	f.searchCalls.Add(1)
	if f.failSearch {
		return nil, errors.New("connection refused")
	}
	res := &providers.RawgSearchResponse{}
	for _, g := range f.games {
		res.Results = append(res.Results, g)
	}
	res.Count = len(res.Results)
	return res, nil
}

func (f *fakeCatalog) GetGameDetails(ctx context.Context, rawgID int) (*providers.RawgGame, error) {
	f.detailCalls.Add(1)
	// widen the window in which concurrent imports overlap
	time.Sleep(10 * time.Millisecond)
	if f.failDetails {
		return nil, errors.New("timeout")
	}
	g, ok := f.games[rawgID]
	if !ok {
		return nil, providers.ErrGameNotFound
	}
	return &g, nil
}

type fakeCovers struct{ url string }

func (f fakeCovers) CoverByName(ctx context.Context, name string) string { return f.url }

func newCatalog() *fakeCatalog {
	return &fakeCatalog{games: map[int]providers.RawgGame{
		3498: {ID: 3498, Name: "Grand Theft Auto V", Rating: 4.47, Platforms: json.RawMessage(`[{"platform":{"name":"PC"}}]`)},
	}}
}

func TestFindOrCreateImportsOnce(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := newCatalog()
	svc := gameService.NewGameService(gameRepo.NewGameRepository(db), catalog, fakeCovers{url: "https://img/cover.jpg"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			game, err := svc.FindOrCreate(context.Background(), 3498)
			assert.NoError(t, err)
			if game != nil {
				assert.Equal(t, "Grand Theft Auto V", game.Name)
			}
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&entity.Game{}).Where("rawg_id = ?", 3498).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	game, err := svc.FindOrCreate(context.Background(), 3498)
	require.NoError(t, err)
	require.NotNil(t, game.CoverURL)
	assert.Equal(t, "https://img/cover.jpg", *game.CoverURL)
	assert.JSONEq(t, `[{"platform":{"name":"PC"}}]`, string(game.Platforms))
	assert.JSONEq(t, `[]`, string(game.Genres))
	assert.EqualValues(t, 1, catalog.detailCalls.Load())
}

func TestFindOrCreateErrors(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := newCatalog()
	svc := gameService.NewGameService(gameRepo.NewGameRepository(db), catalog, nil, nil)

	_, err := svc.FindOrCreate(context.Background(), 1)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	catalog.failDetails = true
	_, err = svc.FindOrCreate(context.Background(), 3498)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))
	assert.EqualError(t, err, gameService.MsgRawgUnavailable)
}

func TestSearchGamesIsCached(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	catalog := newCatalog()
	svc := gameService.NewGameService(gameRepo.NewGameRepository(db), catalog, nil, rdb)

	first, err := svc.SearchGames(context.Background(), "GTA", 1, 20)
	require.NoError(t, err)
	second, err := svc.SearchGames(context.Background(), "gta", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, first.Count, second.Count)
	assert.EqualValues(t, 1, catalog.searchCalls.Load())

	mr.FastForward(11 * time.Minute)
	_, err = svc.SearchGames(context.Background(), "gta", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, catalog.searchCalls.Load())
}

func TestSearchGamesValidation(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := newCatalog()
	catalog.failSearch = true
	svc := gameService.NewGameService(gameRepo.NewGameRepository(db), catalog, nil, nil)

	_, err := svc.SearchGames(context.Background(), "   ", 1, 20)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))

	_, err = svc.SearchGames(context.Background(), "zelda", 1, 20)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))
}

func TestTopAndTrendingGames(t *testing.T) {
	db := testutil.NewDB(t)
	svc := gameService.NewGameService(gameRepo.NewGameRepository(db), newCatalog(), nil, nil)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	celeste := testutil.CreateGame(t, db, 1, "Celeste")
	doom := testutil.CreateGame(t, db, 2, "Doom")
	testutil.CreateGame(t, db, 3, "Unreviewed")

	testutil.CreateReview(t, db, alice.ID, celeste.ID, 5)
	testutil.CreateReview(t, db, bob.ID, celeste.ID, 4)
	testutil.CreateReview(t, db, alice.ID, doom.ID, 5)

	top, err := svc.GetTopGames(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Doom", top[0].Name)
	assert.Equal(t, 5.0, top[0].AverageRating)
	assert.Equal(t, "Celeste", top[1].Name)
	assert.Equal(t, 4.5, top[1].AverageRating)
	assert.EqualValues(t, 2, top[1].ReviewCount)

	// old activity falls out of the window
	old := testutil.CreateMemory(t, db, bob.ID, doom.ID, "ancient")
	require.NoError(t, db.Model(old).UpdateColumn("created_at", time.Now().UTC().Add(-30*24*time.Hour)).Error)
	testutil.CreateMemory(t, db, bob.ID, celeste.ID, "fresh")

	trending, err := svc.GetTrendingGames(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, "Celeste", trending[0].Name)
	assert.EqualValues(t, 3, trending[0].Activity)
	assert.EqualValues(t, 1, trending[1].Activity)
}
