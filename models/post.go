package models

import "time"

// Post is a text post with an optional media reference. Likes and comments
// are separate tables; the counts are computed when posts are listed.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"userId"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Media          string    `gorm:"size:1024" json:"media,omitempty"`
	MentionedUsers []uint    `gorm:"serializer:json;type:text" json:"mentionedUsers,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
	User           User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	LikesCount    int64 `gorm:"->;-:migration" json:"likesCount"`
	CommentsCount int64 `gorm:"->;-:migration" json:"commentsCount"`
}
