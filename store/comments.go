package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/cppla/yatube/models"
)

// CreateComment adds a comment by authorID to postID.
func (s *Store) CreateComment(ctx context.Context, postID, authorID uint, text string) (*models.Comment, error) {
	db := s.db.WithContext(ctx)

	var post models.Post
	if err := db.Select("id").First(&post, postID).Error; err != nil {
		return nil, translate(err, "post %d", postID)
	}
	if err := s.userExists(db, authorID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
		Created:  s.clock.Now(),
	}
	if err := db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, translate(err, "create comment on post %d", postID)
	}
	if err := db.Preload("Author").First(comment, comment.ID).Error; err != nil {
		return nil, translate(err, "reload comment %d", comment.ID)
	}
	return comment, nil
}

// CommentsForPost returns the comments on a post, oldest first.
func (s *Store) CommentsForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, "comments of post %d", postID)
	}
	return comments, nil
}

// CommentByID loads one comment.
func (s *Store) CommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, translate(err, "comment %d", id)
	}
	return &comment, nil
}

// DeleteComment removes one comment.
func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete comment %d", id)
	}
	if res.RowsAffected == 0 {
		return notFound("comment %d", id)
	}
	return nil
}
