package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"mymemorycard.com/backend/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// CoverProvider looks up box art for a game name. An empty string means no cover.
type CoverProvider interface {
	CoverByName(ctx context.Context, gameName string) string
}

var errTokenRejected = errors.New("igdb rejected the access token")

type IGDBOptions struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	// TokenTTL bounds how long a token is reused, whatever the provider says.
	TokenTTL time.Duration
	Timeout  time.Duration
}

// IGDBClient authenticates with Twitch client credentials and memoizes the token.
// Concurrent refreshes collapse into one request.
type IGDBClient struct {
	clientID   string
	baseURL    string
	ttl        time.Duration
	oauth      clientcredentials.Config
	httpClient *http.Client

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	refresh   singleflight.Group
	now       func() time.Time
}

func NewIGDBClient(opts IGDBOptions) *IGDBClient {
	return &IGDBClient{
		clientID: opts.ClientID,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		ttl:      opts.TokenTTL,
		oauth: clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: &http.Client{Timeout: opts.Timeout},
		now:        time.Now,
	}
}

func (c *IGDBClient) cachedToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, true
	}
	return "", false
}

func (c *IGDBClient) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

const defaultTokenTimeout = 10 * time.Second

// AccessToken returns the cached token, fetching a new one when missing or expired.
// The fetch is shared by every waiting caller, so it runs detached from ctx:
// a caller that gives up stops waiting but the token still lands in the cache.
func (c *IGDBClient) AccessToken(ctx context.Context) (string, error) {
	if tok, ok := c.cachedToken(); ok {
		return tok, nil
	}

	flight := c.refresh.DoChan("token", func() (any, error) {
		// a flight that finished just before this one may have filled the cache
		if tok, ok := c.cachedToken(); ok {
			return tok, nil
		}

		timeout := c.httpClient.Timeout
		if timeout <= 0 {
			timeout = defaultTokenTimeout
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		tok, err := c.oauth.Token(context.WithValue(fetchCtx, oauth2.HTTPClient, c.httpClient))
		if err != nil {
			return "", fmt.Errorf("failed to fetch twitch token: %w", err)
		}

		expiresAt := c.now().Add(c.ttl)
		if !tok.Expiry.IsZero() && tok.Expiry.Before(expiresAt) {
			expiresAt = tok.Expiry
		}

		c.mu.Lock()
		c.token = tok.AccessToken
		c.expiresAt = expiresAt
		c.mu.Unlock()

		return tok.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

type igdbGame struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Cover int    `json:"cover"`
}

type igdbCover struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

func (c *IGDBClient) CoverByName(ctx context.Context, gameName string) string {
	cover, err := c.coverByName(ctx, gameName)
	if errors.Is(err, errTokenRejected) {
		c.invalidate()
		cover, err = c.coverByName(ctx, gameName)
	}
	if err != nil {
		logger.Log.WithError(err).WithField("game", gameName).Warn("igdb cover lookup failed")
		return ""
	}
	return cover
}

func (c *IGDBClient) coverByName(ctx context.Context, gameName string) (string, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	// 1. Find the game
	var games []igdbGame
	query := fmt.Sprintf(`search "%s"; fields name,cover; limit 1;`, strings.ReplaceAll(gameName, `"`, `\"`))
	if err := c.post(ctx, token, "/games", query, &games); err != nil {
		return "", err
	}
	if len(games) == 0 || games[0].Cover == 0 {
		return "", nil
	}

	// 2. Resolve its cover
	var covers []igdbCover
	if err := c.post(ctx, token, "/covers", fmt.Sprintf("fields url; where id = %d;", games[0].Cover), &covers); err != nil {
		return "", err
	}
	if len(covers) == 0 || covers[0].URL == "" {
		return "", nil
	}

	return NormalizeCoverURL(covers[0].URL), nil
}

func (c *IGDBClient) post(ctx context.Context, token, path, body string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBufferString(body))
	if err != nil {
		return err
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("igdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return errTokenRejected
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("igdb %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// NormalizeCoverURL upgrades the thumbnail size and makes protocol-relative URLs absolute.
func NormalizeCoverURL(raw string) string {
	cover := strings.Replace(raw, "t_thumb", "t_cover_big", 1)
	if strings.HasPrefix(cover, "//") {
		cover = "https:" + cover
	}
	return cover
}
