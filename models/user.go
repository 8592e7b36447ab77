package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is an account. Passwords are stored as bcrypt hashes only.
// Follow relationships live in the follows table, see Follow.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null" json:"username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"-"`
}

// BeforeCreate normalizes the email so the unique index is case-insensitive.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// All lists every model for auto-migration.
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &Comment{}, &Like{}, &Follow{}, &Notification{}}
}
