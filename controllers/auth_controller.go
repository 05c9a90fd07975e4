package controllers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// AuthController handles sign-up, login and logout.
type AuthController struct {
	Deps
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(d Deps) *AuthController {
	return &AuthController{Deps: d}
}

// Usernames follow the usual letters, digits and @.+-_ rule.
var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

type credentials struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

// Signup registers a user and starts a session.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req credentials
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FormError(ctx, http.StatusBadRequest, 40001, "invalid sign-up", map[string]string{"__all__": "invalid request payload"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	errs := map[string]string{}
	if !usernamePattern.MatchString(req.Username) {
		errs["username"] = "enter a valid username"
	}
	if len(req.Password) < 8 || len(req.Password) > 72 {
		errs["password"] = "password must be 8 to 72 characters"
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		errs["email"] = "enter a valid email address"
	}
	if len(errs) > 0 {
		utils.FormError(ctx, http.StatusBadRequest, 40002, "invalid sign-up", errs)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user, err := a.Store.CreateUser(ctx.Request.Context(), req.Username, req.Email, hash)
	if err != nil {
		if store.IsConflict(err) {
			utils.FormError(ctx, http.StatusConflict, 40901, "invalid sign-up", map[string]string{"username": "a user with that username already exists"})
			return
		}
		respondStoreError(ctx, err, "user")
		return
	}
	a.startSession(ctx, user, "")
}

// LoginPage answers GET /auth/login/ and echoes the return path.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	utils.Respond(ctx, http.StatusOK, 0, "login required", gin.H{"next": ctx.Query("next")})
}

// Login verifies credentials and starts a session. With a local ?next=
// target the answer is a redirect there.
func (a *AuthController) Login(ctx *gin.Context) {
	var req credentials
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}
	if req.Next == "" {
		req.Next = ctx.Query("next")
	}

	user, err := a.Store.UserByUsername(ctx.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil && !store.IsNotFound(err) {
		respondStoreError(ctx, err, "user")
		return
	}
	// Unknown users still pay for a comparison so timing does not reveal them.
	hash := ""
	if err == nil {
		hash = user.PasswordHash
	}
	if !utils.CheckPassword(hash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}
	a.startSession(ctx, user, req.Next)
}

// Logout revokes the current session token.
func (a *AuthController) Logout(ctx *gin.Context) {
	jti := ctx.GetString(middleware.ContextTokenIDKey)
	expiresAt, ok := middleware.TokenExpiry(ctx)
	if !ok {
		expiresAt = time.Now().Add(a.SessionTTL)
	}
	utils.BlacklistToken(ctx.Request.Context(), jti, expiresAt)

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(a.SessionCookie, "", -1, "/", "", false, true)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

func (a *AuthController) startSession(ctx *gin.Context, user *models.User, next string) {
	token, err := utils.GenerateToken(user.ID, user.Username, a.SessionTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(a.SessionCookie, token, int(a.SessionTTL/time.Second), "/", "", false, true)

	if next != "" && safeNext(next) {
		utils.Redirect(ctx, next)
		return
	}
	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}
