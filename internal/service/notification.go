package service

import (
	"context"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

// NotificationService reads and maintains the notifications stored for
// each user.
type NotificationService struct {
	store repository.Store
}

// NewNotificationService constructs a NotificationService with its store.
func NewNotificationService(store repository.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]model.Notification, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListNotifications(ctx, userID)
}

// MarkRead flags one notification as read and returns it.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	return s.store.MarkNotificationRead(ctx, id)
}

// MarkAllRead flags every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (*model.MarkAllReadResponse, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	n, err := s.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.MarkAllReadResponse{Updated: n}, nil
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteNotification(ctx, id)
}
