package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.Set(config.AppConfig{
		JWTSecret:         "test-secret",
		SessionCookieName: "session",
		AdminUsernames:    []string{"root"},
	})
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(CurrentUser())
	r.GET("/open", func(c *gin.Context) {
		id, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
	})
	private := r.Group("", LoginRequired())
	private.GET("/private/:id/edit", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextUsernameKey)) })
	private.GET("/admin", AdminRequired(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func token(t *testing.T, id uint, username string) string {
	t.Helper()
	tok, err := utils.GenerateToken(id, username, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestLoginRequiredRedirects(t *testing.T) {
	r := newRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private/5/edit?x=1&y=2", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/private/5/edit%3Fx%3D1%26y%3D2", w.Header().Get("Location"))
}

func TestBearerAndCookieSessions(t *testing.T) {
	r := newRouter()
	tok := token(t, 3, "leo")

	req := httptest.NewRequest(http.MethodGet, "/private/5/edit", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "leo", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/private/5/edit", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: tok})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvalidOrRevokedTokenIsAnonymous(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"id":0,"ok":false}`, w.Body.String())

	tok := token(t, 4, "ann")
	claims, err := utils.ParseToken(tok)
	require.NoError(t, err)
	utils.BlacklistToken(req.Context(), claims.ID, claims.ExpiresAt.Time)

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"id":0,"ok":false}`, w.Body.String())
}

func TestAdminRequired(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 1, "leo"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 2, "root"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(4))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := map[int]int{}
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes[w.Code]++
	}
	assert.Equal(t, 2, codes[http.StatusOK], "burst is half the per-minute rate")
	assert.Equal(t, 3, codes[http.StatusTooManyRequests])

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "buckets are per IP")
}
