package models

import "time"

// Like records that a user liked a post. The (user_id, post_id) pair is unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"userId"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}
