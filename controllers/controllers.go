package controllers

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/yatube/cache"
	"github.com/cppla/yatube/fanout"
	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/social"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// Deps bundles what the controllers need.
type Deps struct {
	Store    *store.Store
	Graph    *social.Graph
	Feed     *feed.Assembler
	Cache    *cache.Cache
	Notifier fanout.Notifier

	// IndexWindow and GroupWindow are the cache windows of the global and
	// group feeds. Zero disables caching for that view.
	IndexWindow time.Duration
	GroupWindow time.Duration

	SessionCookie string
	SessionTTL    time.Duration
}

const (
	postsPath  = "/api/v1/posts"
	groupsPath = "/api/v1/groups"
	usersPath  = "/api/v1/users"
)

func postPath(id uint) string {
	return fmt.Sprintf("%s/%d", postsPath, id)
}

func profilePath(username string) string {
	return usersPath + "/" + username
}

func groupPostsPath(slug string) string {
	return groupsPath + "/" + slug + "/posts"
}

// respondStoreError maps store errors onto HTTP answers.
func respondStoreError(ctx *gin.Context, err error, what string) {
	switch {
	case store.IsNotFound(err):
		utils.Error(ctx, http.StatusNotFound, 40400, what+" not found")
	case store.IsConflict(err):
		utils.Error(ctx, http.StatusConflict, 40900, what+" already exists")
	default:
		utils.Logger.Error("store failure",
			zap.String("what", what),
			zap.String("path", ctx.Request.URL.Path),
			zap.String("request_id", ctx.GetString(utils.RequestIDKey)),
			zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}

// parseID reads a positive integer path parameter. Anything else is a 404,
// the same answer as for an id that does not exist.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
		return 0, false
	}
	return uint(id), true
}

// viewerID returns the authenticated user's id, or 0 for anonymous callers.
func viewerID(ctx *gin.Context) uint {
	id, _ := middleware.UserID(ctx)
	return id
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true,
}

// validImageRef accepts an empty reference or one naming an image file.
func validImageRef(ref string) bool {
	if ref == "" {
		return true
	}
	if len(ref) > 512 {
		return false
	}
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return imageExtensions[strings.ToLower(path.Ext(ref))]
}

// safeNext accepts only local absolute paths as a post-login target.
func safeNext(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\")
}
