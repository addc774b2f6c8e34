package testutil

import (
	"context"
	"fmt"

	"mymemorycard.com/backend/internal/providers"
)

// StubCatalog answers every RAWG id with a synthetic game, except 404 which is unknown.
type StubCatalog struct{}

func (StubCatalog) SearchGames(ctx context.Context, q string, page, pageSize int) (*providers.RawgSearchResponse, error) {
	return &providers.RawgSearchResponse{Results: []providers.RawgGame{}}, nil
}

func (StubCatalog) GetGameDetails(ctx context.Context, rawgID int) (*providers.RawgGame, error) {
	if rawgID == 404 {
		return nil, providers.ErrGameNotFound
	}
	return &providers.RawgGame{ID: rawgID, Name: fmt.Sprintf("Game %d", rawgID)}, nil
}
