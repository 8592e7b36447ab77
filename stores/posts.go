package stores

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Chandrasura25/Social-media-backend-case-study/models"
)

// PostFilter narrows List. A nil AuthorIDs slice means no author filter,
// an empty non-nil one matches nothing.
type PostFilter struct {
	AuthorIDs []uint
}

// ByAuthor filters to a single author.
func ByAuthor(id uint) PostFilter {
	return PostFilter{AuthorIDs: []uint{id}}
}

// PostStore is the content store: posts with their like set and comment log.
type PostStore struct {
	db *gorm.DB
}

func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

const postSummaryColumns = "posts.*, " +
	"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

func withAuthor(tx *gorm.DB) *gorm.DB {
	return tx.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username")
	})
}

func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// FindByID loads a post with its live like and comment counts.
func (s *PostStore) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var p models.Post
	err := withAuthor(s.db.WithContext(ctx).Model(&models.Post{})).
		Select(postSummaryColumns).
		Where("posts.id = ?", id).
		Take(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// OwnerID returns the author of a post.
func (s *PostStore) OwnerID(ctx context.Context, postID uint) (uint, error) {
	var p models.Post
	if err := s.db.WithContext(ctx).Select("id", "user_id").First(&p, postID).Error; err != nil {
		return 0, translate(err)
	}
	return p.UserID, nil
}

// List returns posts newest first. Ties on created_at break by id so pages
// are stable for a fixed snapshot.
func (s *PostStore) List(ctx context.Context, f PostFilter, offset, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	if f.AuthorIDs != nil && len(f.AuthorIDs) == 0 {
		return posts, nil
	}
	q := withAuthor(s.db.WithContext(ctx).Model(&models.Post{})).Select(postSummaryColumns)
	if f.AuthorIDs != nil {
		q = q.Where("posts.user_id IN ?", f.AuthorIDs)
	}
	err := q.Order("posts.created_at DESC").Order("posts.id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// AddLike inserts the (user, post) pair and reports false when it already existed.
func (s *PostStore) AddLike(ctx context.Context, userID, postID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveLike deletes the pair; removing an absent like is a no-op.
func (s *PostStore) RemoveLike(ctx context.Context, userID, postID uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
}

// AppendComment adds one row to the post's comment log. A single insert, so
// concurrent comments cannot overwrite each other.
func (s *PostStore) AppendComment(ctx context.Context, c *models.Comment) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

// Comments returns a post's comments in the order they were written.
func (s *PostStore) Comments(ctx context.Context, postID uint, offset, limit int) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username") }).
		Where("post_id = ?", postID).
		Order("created_at").Order("id").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	return comments, err
}

// Totals holds row counts for the stats endpoint.
type Totals struct {
	Posts    int64 `json:"postCount"`
	Comments int64 `json:"commentCount"`
	Likes    int64 `json:"likeCount"`
}

func (s *PostStore) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Post{}).Count(&t.Posts).Error; err != nil {
		return t, err
	}
	if err := db.Model(&models.Comment{}).Count(&t.Comments).Error; err != nil {
		return t, err
	}
	err := db.Model(&models.Like{}).Count(&t.Likes).Error
	return t, err
}
