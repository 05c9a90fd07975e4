package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/yatube/models"
)

// PostInput carries the editable fields of a post.
type PostInput struct {
	Text    string
	GroupID *uint
	Image   string
}

// PostFilter narrows ListPosts and CountPosts.
type PostFilter struct {
	// AuthorIDs restricts to these authors when non-nil. An empty non-nil
	// slice matches nothing.
	AuthorIDs []uint
	// GroupID restricts to one group when set.
	GroupID *uint
}

// CreatePost stores a new post by authorID, stamping PubDate from the clock.
func (s *Store) CreatePost(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	db := s.db.WithContext(ctx)
	if err := s.userExists(db, authorID); err != nil {
		return nil, err
	}
	if in.GroupID != nil {
		if err := s.groupExists(db, *in.GroupID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	post := &models.Post{
		Text:      in.Text,
		PubDate:   now,
		AuthorID:  authorID,
		GroupID:   in.GroupID,
		Image:     in.Image,
		UpdatedAt: now,
	}
	if err := db.Omit(clause.Associations).Create(post).Error; err != nil {
		return nil, translate(err, "create post")
	}
	return s.PostByID(ctx, post.ID)
}

// PostByID loads a post with its author and group.
func (s *Store) PostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, translate(err, "post %d", id)
	}
	return &post, nil
}

// UpdatePost replaces the editable fields of a post. PubDate never changes.
func (s *Store) UpdatePost(ctx context.Context, id uint, in PostInput) (*models.Post, error) {
	db := s.db.WithContext(ctx)

	var current models.Post
	if err := db.Select("id").First(&current, id).Error; err != nil {
		return nil, translate(err, "post %d", id)
	}
	if in.GroupID != nil {
		if err := s.groupExists(db, *in.GroupID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"text":       in.Text,
		"group_id":   in.GroupID,
		"image":      in.Image,
		"updated_at": s.clock.Now(),
	}
	if err := db.Model(&models.Post{}).Where("id = ?", id).UpdateColumns(updates).Error; err != nil {
		return nil, translate(err, "update post %d", id)
	}
	return s.PostByID(ctx, id)
}

// DeletePost removes a post together with its comments and likes.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, id).Error; err != nil {
			return translate(err, "post %d", id)
		}
		if err := deletePostDependents(tx, []uint{id}); err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return translate(err, "delete post %d", id)
		}
		return nil
	})
}

// ListPosts returns a window of posts, newest first.
func (s *Store) ListPosts(ctx context.Context, f PostFilter, offset, limit int) ([]models.Post, error) {
	if f.AuthorIDs != nil && len(f.AuthorIDs) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	q := applyPostFilter(s.db.WithContext(ctx), f).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit)
	if err := q.Find(&posts).Error; err != nil {
		return nil, translate(err, "list posts")
	}
	return posts, nil
}

// CountPosts counts posts matching f.
func (s *Store) CountPosts(ctx context.Context, f PostFilter) (int64, error) {
	if f.AuthorIDs != nil && len(f.AuthorIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := applyPostFilter(s.db.WithContext(ctx), f).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, translate(err, "count posts")
	}
	return n, nil
}

func applyPostFilter(db *gorm.DB, f PostFilter) *gorm.DB {
	if f.AuthorIDs != nil {
		db = db.Where("author_id IN ?", f.AuthorIDs)
	}
	if f.GroupID != nil {
		db = db.Where("group_id = ?", *f.GroupID)
	}
	return db
}

func deletePostDependents(tx *gorm.DB, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
		return translate(err, "delete comments of posts %v", postIDs)
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Like{}).Error; err != nil {
		return translate(err, "delete likes of posts %v", postIDs)
	}
	return nil
}
