// Package social answers who-follows-whom and who-liked-what, and applies
// follow and like mutations idempotently.
package social

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// Graph is the social graph index over the entity store.
type Graph struct {
	store *store.Store
}

// New creates a Graph backed by s.
func New(s *store.Store) *Graph {
	return &Graph{store: s}
}

// FollowingOf returns the ids of the authors userID follows.
func (g *Graph) FollowingOf(ctx context.Context, userID uint) ([]uint, error) {
	return g.store.FollowingIDs(ctx, userID)
}

// FollowersOf returns the ids of the users following authorID.
func (g *Graph) FollowersOf(ctx context.Context, authorID uint) ([]uint, error) {
	return g.store.FollowerIDs(ctx, authorID)
}

// IsFollowing reports whether an edge userID -> authorID exists.
func (g *Graph) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	_, ok, err := g.store.FollowEdge(ctx, userID, authorID)
	return ok, err
}

// FollowedSince returns when userID started following authorID. The bool is
// false when userID does not follow authorID.
func (g *Graph) FollowedSince(ctx context.Context, userID, authorID uint) (time.Time, bool, error) {
	edge, ok, err := g.store.FollowEdge(ctx, userID, authorID)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return edge.Created, true, nil
}

// Follow makes userID follow authorID and reports whether a new edge was
// written. Following yourself is ignored; following twice is a no-op.
func (g *Graph) Follow(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == authorID {
		utils.Logger.Debug("self-follow ignored", zap.Uint("user_id", userID))
		return false, nil
	}
	return g.store.CreateFollowIfAbsent(ctx, userID, authorID)
}

// Unfollow removes the edge userID -> authorID. A missing edge is a no-op.
func (g *Graph) Unfollow(ctx context.Context, userID, authorID uint) error {
	_, err := g.store.DeleteFollow(ctx, userID, authorID)
	return err
}

// Like records that userID liked postID. Liking your own post is ignored.
func (g *Graph) Like(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := g.store.PostByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if post.AuthorID == userID {
		utils.Logger.Debug("self-like ignored", zap.Uint("user_id", userID), zap.Uint("post_id", postID))
		return false, nil
	}
	return g.store.CreateLikeIfAbsent(ctx, userID, postID)
}

// Unlike removes userID's like on postID if present.
func (g *Graph) Unlike(ctx context.Context, userID, postID uint) error {
	_, err := g.store.DeleteLike(ctx, userID, postID)
	return err
}

// HasLiked reports whether userID liked postID.
func (g *Graph) HasLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return g.store.LikeExists(ctx, userID, postID)
}

// LikeCount returns the number of likes on postID.
func (g *Graph) LikeCount(ctx context.Context, postID uint) (int64, error) {
	return g.store.LikeCount(ctx, postID)
}
