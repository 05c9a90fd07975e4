package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextTokenIDKey stores the session token's jti.
	ContextTokenIDKey = "token_id"
	// ContextTokenExpiryKey stores the session token's expiry.
	ContextTokenExpiryKey = "token_expiry"

	// LoginPath is where unauthenticated callers are sent.
	LoginPath = "/auth/login/"
)

// CurrentUser resolves the session token, from the Authorization header or
// the session cookie, into the context. Requests without a usable token pass
// through anonymously.
func CurrentUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := sessionToken(ctx)
		if tokenString == "" {
			ctx.Next()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil || utils.IsTokenBlacklisted(ctx.Request.Context(), claims.ID) {
			ctx.Next()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextTokenIDKey, claims.ID)
		if claims.ExpiresAt != nil {
			ctx.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
		}
		ctx.Next()
	}
}

// LoginRequired redirects anonymous callers to the login page, carrying the
// requested path in ?next=.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := UserID(ctx); !ok {
			ctx.Redirect(http.StatusFound, LoginURL(requestPath(ctx.Request)))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// AdminRequired lets through only users listed in AdminUsernames. It must run
// after LoginRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !config.Get().IsAdmin(ctx.GetString(ContextUsernameKey)) {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin only")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// UserID returns the authenticated user's id.
func UserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// TokenExpiry returns the expiry of the session token in use.
func TokenExpiry(ctx *gin.Context) (time.Time, bool) {
	v, ok := ctx.Get(ContextTokenExpiryKey)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// LoginURL builds the login redirect for next.
func LoginURL(next string) string {
	return LoginPath + "?next=" + escapeNext(next)
}

func sessionToken(ctx *gin.Context) string {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := ctx.Cookie(config.Get().SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

func requestPath(r *http.Request) string {
	p := r.URL.Path
	if r.URL.RawQuery != "" {
		p += "?" + r.URL.RawQuery
	}
	return p
}

// escapeNext percent-encodes everything except unreserved characters and
// slashes, so /posts/1/edit stays readable in the query.
func escapeNext(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '_', c == '.', c == '~', c == '/':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&15])
		}
	}
	return b.String()
}
