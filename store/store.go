// Package store is the relational entity store for users, groups, posts,
// comments, follow edges and like edges.
//
// Referential policies are enforced here rather than by database foreign
// keys, so they behave the same on every supported dialect:
//
//   - deleting a user deletes their posts, comments, likes and follow edges,
//     and the comments and likes on their posts
//   - deleting a post deletes its comments and likes
//   - deleting a group sets group_id to NULL on its posts
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/yatube/clock"
	"github.com/cppla/yatube/models"
)

// Store wraps a gorm connection and the clock used to stamp new rows.
type Store struct {
	db    *gorm.DB
	clock clock.Clock
}

// New creates a Store. A nil clock means the system clock.
func New(db *gorm.DB, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System{}
	}
	return &Store{db: db, clock: clk}
}

// DB exposes the underlying connection for tests and tooling.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the tables for every model.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Counts holds row counts per entity.
type Counts struct {
	Users    int64 `json:"user_count"`
	Groups   int64 `json:"group_count"`
	Posts    int64 `json:"post_count"`
	Comments int64 `json:"comment_count"`
	Follows  int64 `json:"follow_count"`
	Likes    int64 `json:"like_count"`
}

// Counts returns the number of rows of each entity.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	db := s.db.WithContext(ctx)
	targets := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.User{}, &c.Users},
		{&models.Group{}, &c.Groups},
		{&models.Post{}, &c.Posts},
		{&models.Comment{}, &c.Comments},
		{&models.Follow{}, &c.Follows},
		{&models.Like{}, &c.Likes},
	}
	for _, t := range targets {
		if err := db.Model(t.model).Count(t.dst).Error; err != nil {
			return Counts{}, fmt.Errorf("count %T: %w", t.model, err)
		}
	}
	return c, nil
}
