package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/yatube/models"
)

// FollowEdge returns the edge userID -> authorID. The bool is false when no
// edge exists.
func (s *Store) FollowEdge(ctx context.Context, userID, authorID uint) (models.Follow, bool, error) {
	var edge models.Follow
	err := s.db.WithContext(ctx).Where("user_id = ? AND author_id = ?", userID, authorID).First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Follow{}, false, nil
	}
	if err != nil {
		return models.Follow{}, false, translate(err, "follow %d->%d", userID, authorID)
	}
	return edge, true, nil
}

// CreateFollowIfAbsent inserts the edge userID -> authorID unless it exists.
// It reports whether a row was written.
func (s *Store) CreateFollowIfAbsent(ctx context.Context, userID, authorID uint) (bool, error) {
	db := s.db.WithContext(ctx)
	if err := s.userExists(db, userID); err != nil {
		return false, err
	}
	if err := s.userExists(db, authorID); err != nil {
		return false, err
	}
	if _, ok, err := s.FollowEdge(ctx, userID, authorID); err != nil || ok {
		return false, err
	}

	edge := models.Follow{UserID: userID, AuthorID: authorID, Created: s.clock.Now()}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	return insertedOnce(res, "follow %d->%d", userID, authorID)
}

// DeleteFollow removes the edge userID -> authorID if present.
func (s *Store) DeleteFollow(ctx context.Context, userID, authorID uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	if res.Error != nil {
		return false, translate(res.Error, "unfollow %d->%d", userID, authorID)
	}
	return res.RowsAffected > 0, nil
}

// FollowingIDs lists the authors userID follows.
func (s *Store) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Order("author_id ASC").
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, translate(err, "following of user %d", userID)
	}
	return ids, nil
}

// FollowerIDs lists the users following authorID.
func (s *Store) FollowerIDs(ctx context.Context, authorID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("author_id = ?", authorID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translate(err, "followers of user %d", authorID)
	}
	return ids, nil
}

// CreateLikeIfAbsent records that userID liked postID unless already recorded.
func (s *Store) CreateLikeIfAbsent(ctx context.Context, userID, postID uint) (bool, error) {
	db := s.db.WithContext(ctx)
	if err := s.userExists(db, userID); err != nil {
		return false, err
	}
	var post models.Post
	if err := db.Select("id").First(&post, postID).Error; err != nil {
		return false, translate(err, "post %d", postID)
	}
	exists, err := s.LikeExists(ctx, userID, postID)
	if err != nil || exists {
		return false, err
	}

	like := models.Like{UserID: userID, PostID: postID, Created: s.clock.Now()}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	return insertedOnce(res, "like %d->%d", userID, postID)
}

// DeleteLike removes the like userID -> postID if present.
func (s *Store) DeleteLike(ctx context.Context, userID, postID uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	if res.Error != nil {
		return false, translate(res.Error, "unlike %d->%d", userID, postID)
	}
	return res.RowsAffected > 0, nil
}

// LikeExists reports whether userID liked postID.
func (s *Store) LikeExists(ctx context.Context, userID, postID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "like %d->%d", userID, postID)
	}
	return n > 0, nil
}

// LikeCount counts the likes on postID.
func (s *Store) LikeCount(ctx context.Context, postID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, translate(err, "likes of post %d", postID)
	}
	return n, nil
}

// insertedOnce interprets the result of an ON CONFLICT DO NOTHING insert.
// A duplicate that slipped past the existence check is not an error.
func insertedOnce(res *gorm.DB, format string, args ...interface{}) (bool, error) {
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, translate(res.Error, format, args...)
	}
	return res.RowsAffected > 0, nil
}
