// Package services holds the engagement and account logic that sits between
// the HTTP controllers and the gorm stores.
package services

import (
	"context"
	"time"

	"github.com/Chandrasura25/Social-media-backend-case-study/models"
	"github.com/Chandrasura25/Social-media-backend-case-study/stores"
)

// IdentityStore is what the services need from the user and follow tables.
type IdentityStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Count(ctx context.Context) (int64, error)

	AddFollow(ctx context.Context, followerID, followeeID uint) (bool, error)
	RemoveFollow(ctx context.Context, followerID, followeeID uint) error
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowCounts(ctx context.Context, userID uint) (followers, following int64, err error)
	Followers(ctx context.Context, userID uint, offset, limit int) ([]models.User, error)
	Following(ctx context.Context, userID uint, offset, limit int) ([]models.User, error)
}

// ContentStore is what the services need from the post, like and comment tables.
type ContentStore interface {
	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	OwnerID(ctx context.Context, postID uint) (uint, error)
	List(ctx context.Context, f stores.PostFilter, offset, limit int) ([]models.Post, error)
	AddLike(ctx context.Context, userID, postID uint) (bool, error)
	RemoveLike(ctx context.Context, userID, postID uint) error
	AppendComment(ctx context.Context, c *models.Comment) error
	Comments(ctx context.Context, postID uint, offset, limit int) ([]models.Comment, error)
	Totals(ctx context.Context) (stores.Totals, error)
}

// Notifier accepts notifications for asynchronous delivery. Publish must
// not block and has no failure mode visible to the caller.
type Notifier interface {
	Publish(n models.Notification)
}

// Invalidator drops cached list responses after a write.
type Invalidator interface {
	InvalidatePrefix(ctx context.Context, prefix string)
}

type nopNotifier struct{}

func (nopNotifier) Publish(models.Notification) {}

type nopInvalidator struct{}

func (nopInvalidator) InvalidatePrefix(context.Context, string) {}

// Stats are the site-wide counters served by GET /stats.
type Stats struct {
	Users    int64 `json:"userCount"`
	Posts    int64 `json:"postCount"`
	Comments int64 `json:"commentCount"`
	Likes    int64 `json:"likeCount"`
}

// Profile is a user with follow counts.
type Profile struct {
	User      *models.User `json:"user"`
	Followers int64        `json:"followersCount"`
	Following int64        `json:"followingCount"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}
