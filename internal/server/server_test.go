package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mymemorycard.com/backend/internal/config"
	"mymemorycard.com/backend/internal/entity"
	"mymemorycard.com/backend/internal/server"
	"mymemorycard.com/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	t       *testing.T
	handler http.Handler
	db      *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rawg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/games/42":
			_, _ = w.Write([]byte(`{"id":42,"name":"Hades","released":"2020-09-17","rating":4.4,"genres":[{"name":"Roguelike"}]}`))
		case "/games":
			_, _ = w.Write([]byte(`{"count":1,"results":[{"id":42,"name":"Hades"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(rawg.Close)

	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)

	cfg := &config.Config{
		AppEnv:           "test",
		AllowedOrigins:   []string{"http://localhost:5173"},
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		RawgBaseURL:      rawg.URL,
		OutboundTimeout:  2 * time.Second,
		RateLimitContent: 3 * time.Second,
		XPWorkerInterval: time.Minute,
	}

	srv, err := server.NewServer(cfg, db, rdb)
	require.NoError(t, err)

	return &harness{t: t, handler: srv.Handler(), db: db}
}

func (h *harness) do(method, path, token string, body any) (int, map[string]any) {
	h.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func (h *harness) signup(username string) (string, string) {
	h.t.Helper()
	code, out := h.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(h.t, http.StatusCreated, code, out)
	user := out["user"].(map[string]any)
	return out["token"].(string), user["id"].(string)
}

func TestMemoryLifecycleGrantsExperience(t *testing.T) {
	h := newHarness(t)
	token, userID := h.signup("zagreus")

	code, out := h.do(http.MethodPost, "/memories", token, map[string]any{
		"gameId":  42,
		"title":   "First escape",
		"content": "<b>Finally</b> beat dad",
	})
	require.Equal(t, http.StatusCreated, code, out)
	memory := out["memory"].(map[string]any)
	assert.Equal(t, "Finally beat dad", memory["content"])
	assert.Equal(t, userID, memory["user_id"])
	assert.Equal(t, "Hades", memory["game"].(map[string]any)["name"])

	code, out = h.do(http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	me := out["user"].(map[string]any)
	assert.EqualValues(t, 10, me["exp"])
	assert.EqualValues(t, 1, me["level"])

	code, out = h.do(http.MethodGet, "/memories/game/42", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["memories"], 1)

	code, _ = h.do(http.MethodGet, "/games/42", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestContentCreationIsRateLimited(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signup("speedrunner")

	body := map[string]any{"gameId": 42, "title": "one", "content": "text"}
	code, _ := h.do(http.MethodPost, "/memories", token, body)
	require.Equal(t, http.StatusCreated, code)

	req := httptest.NewRequest(http.MethodPost, "/memories", bytes.NewReader([]byte(`{"gameId":42,"title":"two","content":"text"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestReviewRoutes(t *testing.T) {
	h := newHarness(t)
	token, userID := h.signup("critic")

	code, out := h.do(http.MethodPost, "/reviews", token, map[string]any{
		"gameId":  42,
		"rating":  5,
		"title":   "Masterpiece",
		"content": "Every run feels different",
	})
	require.Equal(t, http.StatusCreated, code, out)
	assert.Equal(t, "Review créée avec succès", out["message"])
	review := out["review"].(map[string]any)
	assert.Equal(t, userID, review["user_id"])
	assert.EqualValues(t, 5, review["rating"])

	code, out = h.do(http.MethodGet, "/reviews/game/42", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["reviews"], 1)

	code, out = h.do(http.MethodGet, "/reviews/"+review["id"].(string), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Masterpiece", out["review"].(map[string]any)["title"])
}

func TestLikeNotifiesAuthor(t *testing.T) {
	h := newHarness(t)
	authorToken, _ := h.signup("author")
	fanToken, _ := h.signup("fan")

	code, out := h.do(http.MethodPost, "/memories", authorToken, map[string]any{"gameId": 42, "title": "t", "content": "c"})
	require.Equal(t, http.StatusCreated, code)
	memoryID := out["memory"].(map[string]any)["id"].(string)

	code, _ = h.do(http.MethodPost, "/likes", fanToken, map[string]string{"targetType": "memory", "targetId": memoryID})
	require.Equal(t, http.StatusCreated, code)

	code, out = h.do(http.MethodPost, "/likes", fanToken, map[string]string{"targetType": "memory", "targetId": memoryID})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Vous avez déjà liké ce contenu", out["error"])

	code, out = h.do(http.MethodGet, "/likes/memory/"+memoryID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["count"])

	assert.Eventually(t, func() bool {
		code, out := h.do(http.MethodGet, "/notifications/unread-count", authorToken, nil)
		return code == http.StatusOK && out["count"] == float64(1)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestAuthGuards(t *testing.T) {
	h := newHarness(t)
	token, userID := h.signup("mortal")

	code, out := h.do(http.MethodPost, "/memories", "", map[string]any{"gameId": 42, "title": "t", "content": "c"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, out["error"], "Token")

	code, _ = h.do(http.MethodGet, "/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	require.NoError(t, h.db.Model(&entity.User{}).Where("id = ?", userID).Update("role", entity.RoleAdmin).Error)

	code, out = h.do(http.MethodGet, "/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["data"].(map[string]any)["total_users"])
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)

	code, out := h.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route non trouvée", out["error"])
}
