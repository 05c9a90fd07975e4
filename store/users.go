package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
)

// CreateUser inserts a user. Usernames are unique.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, conflict("user %q", username)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err, "lookup user %q", username)
	}

	now := s.clock.Now()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, translate(err, "create user %q", username)
	}
	return user, nil
}

// UserByID loads a user by primary key.
func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user %d", id)
	}
	return &user, nil
}

// UserByUsername loads a user by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "user %q", username)
	}
	return &user, nil
}

// DeleteUser removes a user and everything that cascades from them.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return translate(err, "user %d", id)
		}

		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("author_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return translate(err, "list posts of user %d", id)
		}
		if err := deletePostDependents(tx, postIDs); err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return translate(err, "delete posts of user %d", id)
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return translate(err, "delete comments of user %d", id)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return translate(err, "delete likes of user %d", id)
		}
		if err := tx.Where("user_id = ? OR author_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return translate(err, "delete follow edges of user %d", id)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return translate(err, "delete user %d", id)
		}
		return nil
	})
}

func (s *Store) userExists(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err, "lookup user %d", id)
	}
	if n == 0 {
		return notFound("user %d", id)
	}
	return nil
}
