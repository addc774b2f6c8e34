package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrGameNotFound is returned when RAWG has no game with the requested id.
var ErrGameNotFound = errors.New("rawg: game not found")

// GameCatalog abstracts the external game catalog (RAWG).
type GameCatalog interface {
	SearchGames(ctx context.Context, query string, page, pageSize int) (*RawgSearchResponse, error)
	GetGameDetails(ctx context.Context, rawgID int) (*RawgGame, error)
}

type RawgGame struct {
	ID              int             `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Released        *string         `json:"released"`
	BackgroundImage *string         `json:"background_image"`
	Rating          float64         `json:"rating"`
	Platforms       json.RawMessage `json:"platforms"`
	Genres          json.RawMessage `json:"genres"`
	DescriptionRaw  string          `json:"description_raw,omitempty"`
}

type RawgSearchResponse struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []RawgGame `json:"results"`
}

type RawgClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRawgClient builds a catalog client. baseURL is e.g. https://api.rawg.io/api.
func NewRawgClient(baseURL, apiKey string, timeout time.Duration) *RawgClient {
	return &RawgClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RawgClient) SearchGames(ctx context.Context, query string, page, pageSize int) (*RawgSearchResponse, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	var out RawgSearchResponse
	if err := c.get(ctx, "/games", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RawgClient) GetGameDetails(ctx context.Context, rawgID int) (*RawgGame, error) {
	var out RawgGame
	if err := c.get(ctx, fmt.Sprintf("/games/%d", rawgID), url.Values{}, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, ErrGameNotFound
	}
	return &out, nil
}

func (c *RawgClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rawg request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrGameNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rawg api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode rawg response: %w", err)
	}
	return nil
}
