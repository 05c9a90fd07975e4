package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
)

// CreateGroup inserts a group. Slugs are unique.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	db := s.db.WithContext(ctx)

	var existing models.Group
	err := db.Where("slug = ?", group.Slug).First(&existing).Error
	if err == nil {
		return conflict("group %q", group.Slug)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return translate(err, "lookup group %q", group.Slug)
	}

	if err := db.Create(group).Error; err != nil {
		return translate(err, "create group %q", group.Slug)
	}
	return nil
}

// GroupBySlug loads a group by slug.
func (s *Store) GroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, translate(err, "group %q", slug)
	}
	return &group, nil
}

// ListGroups returns all groups ordered by title.
func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.WithContext(ctx).Order("title ASC, id ASC").Find(&groups).Error; err != nil {
		return nil, translate(err, "list groups")
	}
	return groups, nil
}

// DeleteGroup removes a group. Its posts survive with group_id set to NULL.
func (s *Store) DeleteGroup(ctx context.Context, slug string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.Where("slug = ?", slug).First(&group).Error; err != nil {
			return translate(err, "group %q", slug)
		}
		if err := tx.Model(&models.Post{}).Where("group_id = ?", group.ID).UpdateColumn("group_id", nil).Error; err != nil {
			return translate(err, "detach posts from group %q", slug)
		}
		if err := tx.Delete(&group).Error; err != nil {
			return translate(err, "delete group %q", slug)
		}
		return nil
	})
}

func (s *Store) groupExists(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&models.Group{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err, "lookup group %d", id)
	}
	if n == 0 {
		return notFound("group %d", id)
	}
	return nil
}
