package models

import "time"

// Follow is a directed edge: UserID follows AuthorID.
// At most one edge exists per (UserID, AuthorID).
type Follow struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index;uniqueIndex:idx_follow_user_author" json:"user_id"`
	AuthorID uint      `gorm:"not null;index;uniqueIndex:idx_follow_user_author" json:"author_id"`
	Created  time.Time `gorm:"not null;index" json:"created"`
}
