package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codesolution/pmt/internal/models"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create creates a new notification
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// ListByUserID returns a user's notifications, newest first
func (r *GormNotificationRepository) ListByUserID(userID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks a notification as read
func (r *GormNotificationRepository) MarkRead(id, userID uuid.UUID) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}
