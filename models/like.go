package models

import "time"

// Like records that UserID liked PostID. At most one per (UserID, PostID).
type Like struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID  uint      `gorm:"not null;index;uniqueIndex:idx_like_user_post" json:"post_id"`
	Created time.Time `gorm:"not null" json:"created"`
}
