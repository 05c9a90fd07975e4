// Package cache is a time-windowed page cache. Entries are served until
// their window elapses and are never invalidated by writes; staleness up to
// the window length is accepted.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/yatube/utils"
)

// Backend stores opaque values with a fixed expiry window.
type Backend interface {
	// Get returns the value stored under key. ok is
	// false when the key is absent or its window has elapsed.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, window time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Cache fronts a Backend with compute-on-miss.
type Cache struct {
	backend Backend
}

// New creates a Cache over backend.
func New(backend Backend) *Cache {
	return &Cache{backend: backend}
}

// GetOrCompute returns the cached value for key if its window has not
// elapsed, otherwise it calls compute and stores the result for window.
//
// A window <= 0 disables caching: compute runs on every call and nothing is
// stored. Backend failures degrade to computing; they are logged, not
// returned. Concurrent misses may each compute; the last write wins.
func (c *Cache) GetOrCompute(ctx context.Context, key string, window time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	if window <= 0 {
		return compute(ctx)
	}

	value, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		utils.Logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return value, nil
	}

	value, err = compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.backend.Set(ctx, key, value, window); err != nil {
		utils.Logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// Invalidate drops one key. Only administrative tooling and tests call this.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

// InvalidatePrefix drops every key starting with prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if err := c.backend.DeletePrefix(ctx, prefix); err != nil {
		return fmt.Errorf("invalidate prefix %s: %w", prefix, err)
	}
	return nil
}

const (
	// PostsPrefix covers every cached post listing.
	PostsPrefix = "cache:posts:"
	// IndexPrefix covers the cached pages of the global feed.
	IndexPrefix = PostsPrefix + "index:"
)

// IndexKey is the key of one page of the global feed.
func IndexKey(page string) string {
	return IndexPrefix + "page=" + page
}

// GroupPrefix covers the cached pages of one group feed.
func GroupPrefix(slug string) string {
	return PostsPrefix + "group:" + slug + ":"
}

// GroupKey is the key of one page of a group feed.
func GroupKey(slug, page string) string {
	return GroupPrefix(slug) + "page=" + page
}

// Window converts a seconds setting into a cache window.
func Window(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func hasPrefix(key, prefix string) bool {
	return strings.HasPrefix(key, prefix)
}
