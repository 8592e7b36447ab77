package stores

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Chandrasura25/Social-media-backend-case-study/models"
)

// UserStore is the identity store: users plus the follow edge table.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if isDuplicate(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// AddFollow inserts the edge follower -> followee. It reports false when the
// edge already existed; the unique index makes the check and insert one step.
func (s *UserStore) AddFollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveFollow deletes the edge if present.
func (s *UserStore) RemoveFollow(ctx context.Context, followerID, followeeID uint) error {
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
}

// FollowingIDs returns the ids userID follows.
func (s *UserStore) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("id").
		Pluck("followee_id", &ids).Error
	return ids, err
}

// FollowerIDs returns the ids following userID.
func (s *UserStore) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Order("id").
		Pluck("follower_id", &ids).Error
	return ids, err
}

// FollowCounts returns the sizes of userID's followers and following sets.
func (s *UserStore) FollowCounts(ctx context.Context, userID uint) (followers, following int64, err error) {
	if err = s.db.WithContext(ctx).Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	err = s.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following).Error
	return followers, following, err
}

// Followers lists users following userID, oldest edge first.
func (s *UserStore) Followers(ctx context.Context, userID uint, offset, limit int) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).
		Select("users.id", "users.username", "users.created_at").
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.id").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, err
}

// Following lists users that userID follows, oldest edge first.
func (s *UserStore) Following(ctx context.Context, userID uint, offset, limit int) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).
		Select("users.id", "users.username", "users.created_at").
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.id").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, err
}
