package models

import "time"

// Follow is a directed edge: FollowerID follows FolloweeID.
// A user's following set and followers set are both read from this table.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_edge" json:"followerId"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_edge;index" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}
