package stores

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Chandrasura25/Social-media-backend-case-study/models"
)

// NotificationStore persists notifications so clients that were offline can list them.
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

// ForRecipient lists a user's notifications newest first.
func (s *NotificationStore) ForRecipient(ctx context.Context, recipientID uint, offset, limit int) ([]models.Notification, error) {
	items := []models.Notification{}
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	return items, err
}

func (s *NotificationStore) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	return n, err
}

// MarkRead flags one of recipientID's notifications as read. Returns
// ErrNotFound when the id does not belong to the recipient.
func (s *NotificationStore) MarkRead(ctx context.Context, recipientID, id uint) error {
	var n models.Notification
	db := s.db.WithContext(ctx)
	if err := db.Where("id = ? AND recipient_id = ?", id, recipientID).First(&n).Error; err != nil {
		return translate(err)
	}
	if n.Read {
		return nil
	}
	return db.Model(&n).Update("is_read", true).Error
}

// PurgeRead deletes read notifications created before the cutoff.
func (s *NotificationStore) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, before).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
