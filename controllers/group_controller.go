package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/cache"
	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// GroupController serves groups and their feeds.
type GroupController struct {
	Deps
}

// NewGroupController creates a new GroupController instance.
func NewGroupController(d Deps) *GroupController {
	return &GroupController{Deps: d}
}

// List returns every group.
func (g *GroupController) List(ctx *gin.Context) {
	groups, err := g.Store.ListGroups(ctx.Request.Context())
	if err != nil {
		respondStoreError(ctx, err, "groups")
		return
	}
	utils.Success(ctx, gin.H{"groups": groups})
}

// Posts returns a page of a group's posts. The page is cached for
// GroupWindow, which is zero (uncached) unless configured.
func (g *GroupController) Posts(ctx *gin.Context) {
	slug := ctx.Param("slug")
	raw := ctx.Query("page")
	key := cache.GroupKey(slug, feed.PageKey(raw))
	body, err := g.Cache.GetOrCompute(ctx.Request.Context(), key, g.GroupWindow, func(c context.Context) ([]byte, error) {
		group, page, err := g.Feed.Group(c, slug, raw)
		if err != nil {
			return nil, err
		}
		return json.Marshal(utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"group": group, "page": page}})
	})
	if err != nil {
		respondStoreError(ctx, err, "group")
		return
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Create adds a group. A missing slug is derived from the title.
func (g *GroupController) Create(ctx *gin.Context) {
	var form struct {
		Title       string `form:"title" json:"title"`
		Slug        string `form:"slug" json:"slug"`
		Description string `form:"description" json:"description"`
	}
	if err := ctx.ShouldBind(&form); err != nil {
		utils.FormError(ctx, http.StatusBadRequest, 40040, "invalid group", map[string]string{"__all__": "invalid request payload"})
		return
	}

	group := &models.Group{
		Title:       utils.SanitizeText(form.Title),
		Slug:        strings.TrimSpace(form.Slug),
		Description: utils.SanitizeText(form.Description),
	}
	if group.Slug == "" {
		group.Slug = utils.Slugify(group.Title)
	}
	if errs := validateGroup(group); len(errs) > 0 {
		utils.FormError(ctx, http.StatusBadRequest, 40041, "invalid group", errs)
		return
	}

	if err := g.Store.CreateGroup(ctx.Request.Context(), group); err != nil {
		if store.IsConflict(err) {
			utils.FormError(ctx, http.StatusConflict, 40901, "invalid group", map[string]string{"slug": "group with this slug already exists"})
			return
		}
		respondStoreError(ctx, err, "group")
		return
	}
	utils.Redirect(ctx, groupPostsPath(group.Slug))
}

// Delete removes a group; its posts remain without a group.
func (g *GroupController) Delete(ctx *gin.Context) {
	if err := g.Store.DeleteGroup(ctx.Request.Context(), ctx.Param("slug")); err != nil {
		respondStoreError(ctx, err, "group")
		return
	}
	utils.Redirect(ctx, groupsPath)
}

func validateGroup(group *models.Group) map[string]string {
	errs := map[string]string{}
	switch n := utf8.RuneCountInString(group.Title); {
	case n == 0:
		errs["title"] = "this field is required"
	case n > 200:
		errs["title"] = "ensure this value has at most 200 characters"
	}
	if !utils.ValidSlug(group.Slug) {
		errs["slug"] = "enter a valid slug of letters, numbers, underscores or hyphens"
	}
	if utf8.RuneCountInString(group.Description) > 250 {
		errs["description"] = "ensure this value has at most 250 characters"
	}
	return errs
}
