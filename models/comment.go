package models

import "time"

// Comment is a reply to a post.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   uint      `gorm:"index;not null" json:"post_id"`
	AuthorID uint      `gorm:"index;not null" json:"author_id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Created  time.Time `gorm:"not null" json:"created"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;" json:"author"`
}
