package models

import "time"

// NotificationKind is one of the supported notification types.
type NotificationKind string

const (
	NotificationMention NotificationKind = "mention"
	NotificationLike    NotificationKind = "like"
	NotificationComment NotificationKind = "comment"
)

// Valid reports whether k is a known kind.
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationMention, NotificationLike, NotificationComment:
		return true
	}
	return false
}

// Notification is a best-effort message to a user about activity on a post.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"index:idx_notification_recipient,priority:1;not null" json:"recipient"`
	ActorID     uint             `gorm:"not null" json:"actor"`
	Type        NotificationKind `gorm:"size:16;not null" json:"type"`
	PostID      *uint            `json:"postId,omitempty"`
	CommentID   *uint            `json:"commentId,omitempty"`
	Read        bool             `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt   time.Time        `gorm:"index:idx_notification_recipient,priority:2" json:"createdAt"`
}
