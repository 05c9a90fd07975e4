package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/utils"
)

// UserController serves profiles, follows and the personal feed.
type UserController struct {
	Deps
}

// NewUserController creates a new UserController instance.
func NewUserController(d Deps) *UserController {
	return &UserController{Deps: d}
}

// Profile returns an author, a page of their posts and the viewer's
// relationship to them.
func (u *UserController) Profile(ctx *gin.Context) {
	rc := ctx.Request.Context()
	author, page, err := u.Feed.Profile(rc, ctx.Param("username"), ctx.Query("page"))
	if err != nil {
		respondStoreError(ctx, err, "user")
		return
	}

	followers, err := u.Graph.FollowersOf(rc, author.ID)
	if err != nil {
		respondStoreError(ctx, err, "followers")
		return
	}
	following, err := u.Graph.FollowingOf(rc, author.ID)
	if err != nil {
		respondStoreError(ctx, err, "following")
		return
	}

	// Both stay null for anonymous viewers.
	var (
		isFollowing    *bool
		followingSince *time.Time
	)
	if viewer := viewerID(ctx); viewer != 0 {
		since, ok, err := u.Graph.FollowedSince(rc, viewer, author.ID)
		if err != nil {
			respondStoreError(ctx, err, "follow")
			return
		}
		isFollowing = &ok
		if ok {
			followingSince = &since
		}
	}

	utils.Success(ctx, gin.H{
		"author":          author,
		"page":            page,
		"following":       isFollowing,
		"following_since": followingSince,
		"follower_count":  len(followers),
		"following_count": len(following),
	})
}

// Follow makes the viewer follow the author. Self-follows and repeats are
// ignored.
func (u *UserController) Follow(ctx *gin.Context) {
	rc := ctx.Request.Context()
	author, err := u.Store.UserByUsername(rc, ctx.Param("username"))
	if err != nil {
		respondStoreError(ctx, err, "user")
		return
	}
	if _, err := u.Graph.Follow(rc, viewerID(ctx), author.ID); err != nil {
		respondStoreError(ctx, err, "user")
		return
	}
	utils.Redirect(ctx, profilePath(author.Username))
}

// Unfollow removes the viewer's follow edge if present.
func (u *UserController) Unfollow(ctx *gin.Context) {
	rc := ctx.Request.Context()
	author, err := u.Store.UserByUsername(rc, ctx.Param("username"))
	if err != nil {
		respondStoreError(ctx, err, "user")
		return
	}
	if err := u.Graph.Unfollow(rc, viewerID(ctx), author.ID); err != nil {
		respondStoreError(ctx, err, "user")
		return
	}
	utils.Redirect(ctx, profilePath(author.Username))
}

// FollowIndex returns the viewer's personal feed: posts by the authors they
// follow.
func (u *UserController) FollowIndex(ctx *gin.Context) {
	page, err := u.Feed.FeedFor(ctx.Request.Context(), viewerID(ctx), ctx.Query("page"))
	if err != nil {
		respondStoreError(ctx, err, "feed")
		return
	}
	utils.Success(ctx, gin.H{"page": page})
}

// Delete removes a user and everything they own.
func (u *UserController) Delete(ctx *gin.Context) {
	rc := ctx.Request.Context()
	user, err := u.Store.UserByUsername(rc, ctx.Param("username"))
	if err != nil {
		respondStoreError(ctx, err, "user")
		return
	}
	if err := u.Store.DeleteUser(rc, user.ID); err != nil {
		respondStoreError(ctx, err, "user")
		return
	}
	utils.Redirect(ctx, postsPath)
}
