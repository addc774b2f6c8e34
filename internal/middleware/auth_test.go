package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mymemorycard.com/backend/internal/entity"
	"mymemorycard.com/backend/internal/middleware"
	userRepo "mymemorycard.com/backend/internal/modules/user/repository"
	userService "mymemorycard.com/backend/internal/modules/user/service"
	"mymemorycard.com/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "middleware-secret"

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	auth := middleware.NewAuthMiddleware(userRepo.NewUserRepository(db), secret)

	r := gin.New()
	r.GET("/private", auth.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	r.GET("/optional", auth.OptionalAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	r.GET("/admin", auth.RequireAuth(), auth.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, db
}

func do(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, id uuid.UUID, ttl time.Duration) string {
	tok, _, err := userService.GenerateToken(secret, id, ttl)
	require.NoError(t, err)
	return tok
}

func TestRequireAuth(t *testing.T) {
	r, _ := setup(t)
	id := uuid.New()

	w := do(r, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token manquant")

	w = do(r, "/private", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Format de token invalide.")

	w = do(r, "/private", "Bearer garbage")
	assert.Contains(t, w.Body.String(), "Token invalide.")

	w = do(r, "/private", "Bearer "+token(t, id, -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expiré")

	forged, _, err := userService.GenerateToken("other-secret", id, time.Hour)
	require.NoError(t, err)
	w = do(r, "/private", "Bearer "+forged)
	assert.Contains(t, w.Body.String(), "Token invalide.")

	w = do(r, "/private", "Bearer "+token(t, id, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Body.String())

	w = do(r, "/private?token="+token(t, id, time.Hour), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	r, _ := setup(t)
	id := uuid.New()

	w := do(r, "/optional", "Bearer garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, "/optional", "Bearer "+token(t, id, time.Hour))
	assert.Equal(t, id.String(), w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	r, db := setup(t)

	user := testutil.CreateUser(t, db, "player")
	admin := testutil.CreateUser(t, db, "boss")
	require.NoError(t, db.Model(admin).Update("role", entity.RoleAdmin).Error)

	w := do(r, "/admin", "Bearer "+token(t, user.ID, time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Privilèges administrateur requis")

	w = do(r, "/admin", "Bearer "+token(t, uuid.New(), time.Hour))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, "/admin", "Bearer "+token(t, admin.ID, time.Hour))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
