package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cppla/yatube/config"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.Set(config.AppConfig{JWTSecret: "test-secret"})
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(7, "leo", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "leo", claims.Username)
	assert.NotEmpty(t, claims.ID)

	other, err := GenerateToken(7, "leo", time.Hour)
	require.NoError(t, err)
	otherClaims, err := ParseToken(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)

	_, err = ParseToken(token + "x")
	assert.Error(t, err)

	expired, err := GenerateToken(7, "leo", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)
}

func TestBlacklistMemory(t *testing.T) {
	ctx := context.Background()
	SetRedis(nil)

	BlacklistToken(ctx, "jti-mem", time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(ctx, "jti-mem"))
	assert.False(t, IsTokenBlacklisted(ctx, "jti-other"))

	BlacklistToken(ctx, "jti-expired", time.Now().Add(-time.Second))
	assert.False(t, IsTokenBlacklisted(ctx, "jti-expired"))
}

func TestBlacklistRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetRedis(rc)
	t.Cleanup(func() {
		SetRedis(nil)
		_ = rc.Close()
	})

	BlacklistToken(ctx, "jti-redis", time.Now().Add(time.Minute))
	assert.True(t, mr.Exists("jwt:blacklist:jti-redis"))
	assert.True(t, IsTokenBlacklisted(ctx, "jti-redis"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, IsTokenBlacklisted(ctx, "jti-redis"))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))

	assert.False(t, CheckPassword("", "correct horse"), "unknown user never matches")
	assert.False(t, CheckPassword("", ""))

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestParseTokenRejectsForeignTokens(t *testing.T) {
	sign := func(method jwt.SigningMethod, issuer string) string {
		claims := Claims{
			UserID:   7,
			Username: "leo",
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti",
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return s
	}

	_, err := ParseToken(sign(jwt.SigningMethodHS256, TokenIssuer))
	assert.NoError(t, err)

	_, err = ParseToken(sign(jwt.SigningMethodHS256, "someone-else"))
	assert.Error(t, err)
	_, err = ParseToken(sign(jwt.SigningMethodHS512, TokenIssuer))
	assert.Error(t, err)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("  <b>hello</b> <script>x()</script>world "))
	assert.Equal(t, "cats & dogs", SanitizeText("cats & dogs"))
	assert.Equal(t, "", SanitizeText("<p></p>"))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Cats":                "cats",
		"Crème Brûlée Lovers": "creme-brulee-lovers",
		"  --Go & Rust!!  ":   "go-rust",
		"snake_case ok":       "snake_case-ok",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
	long := Slugify("a very long title that keeps going and going past the slug column limit")
	assert.LessOrEqual(t, len(long), MaxSlugLength)
	assert.True(t, ValidSlug(long))

	assert.True(t, ValidSlug("cats-and_dogs"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("cats and dogs"))
	assert.False(t, ValidSlug("котики"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
}

func TestGinzapAndRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(RequestID(), Ginzap(logger, time.RFC3339, true), RecoveryWithZap(logger, true))
	r.GET("/ok", func(c *gin.Context) { Success(c, gin.H{"ok": true}) })
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":50000,"message":"internal server error"}`, w.Body.String())

	assert.NotZero(t, logs.FilterMessage("[Recovery from panic]").Len())
	assert.NotZero(t, logs.FilterMessage("/ok").Len())
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestNewRollingFileLogger(t *testing.T) {
	_, err := NewRollingFileLogger("", "info", 1, 1, 1, false)
	assert.Error(t, err)

	l, err := NewRollingFileLogger(filepath.Join(t.TempDir(), "logs", "gin.log"), "info", 1, 1, 1, false)
	require.NoError(t, err)
	l.Info("hello")
	assert.NoError(t, l.Sync())
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), time.Second, time.Second)

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
