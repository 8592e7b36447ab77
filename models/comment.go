package models

import "time"

// Comment is one entry in a post's append-only comment log.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index:idx_comment_post_order,priority:1;not null" json:"postId"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_comment_post_order,priority:2" json:"createdAt"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}
