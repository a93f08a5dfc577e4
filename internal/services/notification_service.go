package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/models"
	"github.com/codesolution/pmt/internal/repository"
)

// NotificationService provides read access to a user's notifications.
type NotificationService struct {
	notifRepo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(userID uuid.UUID) ([]models.Notification, error) {
	notifications, err := s.notifRepo.ListByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(id, userID uuid.UUID) error {
	if err := s.notifRepo.MarkRead(id, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
