package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/cache"
	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// PostController manages posts, comments and likes.
type PostController struct {
	Deps
}

// NewPostController creates a new PostController instance.
func NewPostController(d Deps) *PostController {
	return &PostController{Deps: d}
}

type postForm struct {
	Text  string `form:"text" json:"text"`
	Group string `form:"group" json:"group"`
	Image string `form:"image" json:"image"`
}

// bind validates the form and resolves the group slug. On failure it
// returns the per-field errors.
func (p *PostController) bind(ctx *gin.Context) (store.PostInput, map[string]string, error) {
	var form postForm
	if err := ctx.ShouldBind(&form); err != nil {
		return store.PostInput{}, map[string]string{"__all__": "invalid request payload"}, nil
	}

	errs := map[string]string{}
	in := store.PostInput{
		Text:  utils.SanitizeText(form.Text),
		Image: strings.TrimSpace(form.Image),
	}
	if in.Text == "" {
		errs["text"] = "this field is required"
	}
	if !validImageRef(in.Image) {
		errs["image"] = "upload a valid image"
	}
	if slug := strings.TrimSpace(form.Group); slug != "" {
		group, err := p.Store.GroupBySlug(ctx.Request.Context(), slug)
		switch {
		case store.IsNotFound(err):
			errs["group"] = "select a valid choice"
		case err != nil:
			return store.PostInput{}, nil, err
		default:
			in.GroupID = &group.ID
		}
	}
	if len(errs) > 0 {
		return store.PostInput{}, errs, nil
	}
	return in, nil, nil
}

// Index serves the global feed through the page cache.
func (p *PostController) Index(ctx *gin.Context) {
	raw := ctx.Query("page")
	body, err := p.Cache.GetOrCompute(ctx.Request.Context(), cache.IndexKey(feed.PageKey(raw)), p.IndexWindow, func(c context.Context) ([]byte, error) {
		page, err := p.Feed.Global(c, raw)
		if err != nil {
			return nil, err
		}
		return json.Marshal(utils.JSONResponse{Code: 0, Message: "success", Data: page})
	})
	if err != nil {
		respondStoreError(ctx, err, "posts")
		return
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Create publishes a post by the current user.
func (p *PostController) Create(ctx *gin.Context) {
	in, errs, err := p.bind(ctx)
	if err != nil {
		respondStoreError(ctx, err, "group")
		return
	}
	if errs != nil {
		utils.FormError(ctx, http.StatusBadRequest, 40020, "invalid post", errs)
		return
	}

	post, err := p.Store.CreatePost(ctx.Request.Context(), viewerID(ctx), in)
	if err != nil {
		respondStoreError(ctx, err, "post")
		return
	}
	p.Notifier.PostCreated(ctx.Request.Context(), post)
	utils.Redirect(ctx, postsPath)
}

// View returns a post with its comments and likes.
func (p *PostController) View(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rc := ctx.Request.Context()

	post, err := p.Store.PostByID(rc, id)
	if err != nil {
		respondStoreError(ctx, err, "post")
		return
	}
	comments, err := p.Store.CommentsForPost(rc, id)
	if err != nil {
		respondStoreError(ctx, err, "comments")
		return
	}
	likes, err := p.Graph.LikeCount(rc, id)
	if err != nil {
		respondStoreError(ctx, err, "likes")
		return
	}

	// liked stays null for anonymous viewers.
	var liked *bool
	if viewer := viewerID(ctx); viewer != 0 {
		v, err := p.Graph.HasLiked(rc, viewer, id)
		if err != nil {
			respondStoreError(ctx, err, "likes")
			return
		}
		liked = &v
	}

	utils.Success(ctx, gin.H{
		"post":       post,
		"comments":   comments,
		"like_count": likes,
		"liked":      liked,
	})
}

// ownPost loads the post and checks the viewer wrote it. Non-authors are
// sent back to the read view and nothing changes.
func (p *PostController) ownPost(ctx *gin.Context) (*models.Post, bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return nil, false
	}
	post, err := p.Store.PostByID(ctx.Request.Context(), id)
	if err != nil {
		respondStoreError(ctx, err, "post")
		return nil, false
	}
	if post.AuthorID != viewerID(ctx) {
		utils.Redirect(ctx, postPath(post.ID))
		return nil, false
	}
	return post, true
}

// Edit replaces the text, group and image of the viewer's own post.
func (p *PostController) Edit(ctx *gin.Context) {
	post, ok := p.ownPost(ctx)
	if !ok {
		return
	}

	in, errs, err := p.bind(ctx)
	if err != nil {
		respondStoreError(ctx, err, "group")
		return
	}
	if errs != nil {
		utils.FormError(ctx, http.StatusBadRequest, 40021, "invalid post", errs)
		return
	}

	updated, err := p.Store.UpdatePost(ctx.Request.Context(), post.ID, in)
	if err != nil {
		respondStoreError(ctx, err, "post")
		return
	}
	p.Notifier.PostUpdated(ctx.Request.Context(), updated)
	utils.Redirect(ctx, postPath(updated.ID))
}

// Delete removes the viewer's own post and returns them to their profile.
func (p *PostController) Delete(ctx *gin.Context) {
	post, ok := p.ownPost(ctx)
	if !ok {
		return
	}
	if err := p.Store.DeletePost(ctx.Request.Context(), post.ID); err != nil {
		respondStoreError(ctx, err, "post")
		return
	}
	p.Notifier.PostDeleted(ctx.Request.Context(), post)
	utils.Redirect(ctx, profilePath(post.Author.Username))
}

// AddComment appends a comment by the viewer.
func (p *PostController) AddComment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var form struct {
		Text string `form:"text" json:"text"`
	}
	if err := ctx.ShouldBind(&form); err != nil {
		utils.FormError(ctx, http.StatusBadRequest, 40030, "invalid comment", map[string]string{"__all__": "invalid request payload"})
		return
	}

	// A missing post is a 404 even when the form is also invalid.
	if _, err := p.Store.PostByID(ctx.Request.Context(), id); err != nil {
		respondStoreError(ctx, err, "post")
		return
	}
	text := utils.SanitizeText(form.Text)
	if text == "" {
		utils.FormError(ctx, http.StatusBadRequest, 40031, "invalid comment", map[string]string{"text": "this field is required"})
		return
	}

	if _, err := p.Store.CreateComment(ctx.Request.Context(), id, viewerID(ctx), text); err != nil {
		respondStoreError(ctx, err, "post")
		return
	}
	utils.Redirect(ctx, postPath(id))
}

// Like records the viewer's like. Repeats and likes on one's own post are
// silently ignored.
func (p *PostController) Like(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if _, err := p.Graph.Like(ctx.Request.Context(), viewerID(ctx), id); err != nil {
		respondStoreError(ctx, err, "post")
		return
	}
	utils.Redirect(ctx, postPath(id))
}

// Unlike removes the viewer's like if present.
func (p *PostController) Unlike(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rc := ctx.Request.Context()
	if _, err := p.Store.PostByID(rc, id); err != nil {
		respondStoreError(ctx, err, "post")
		return
	}
	if err := p.Graph.Unlike(rc, viewerID(ctx), id); err != nil {
		respondStoreError(ctx, err, "post")
		return
	}
	utils.Redirect(ctx, postPath(id))
}
