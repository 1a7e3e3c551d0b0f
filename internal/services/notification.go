package services

import (
	"context"

	"github.com/foundly/foundly-server/internal/model"
	"github.com/foundly/foundly-server/internal/store"
)

// NotificationService exposes the read model over notifications emitted by
// the matcher and the claim engine.
type NotificationService struct {
	store store.Store
}

func NewNotificationService(s store.Store) *NotificationService {
	return &NotificationService{store: s}
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]*model.Notification, error) {
	return s.store.Notifications().ListByUser(ctx, userID)
}

func (s *NotificationService) ListUnread(ctx context.Context, userID string) ([]*model.Notification, error) {
	return s.store.Notifications().ListUnread(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.Notifications().CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.store.Notifications().MarkRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.Notifications().MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, notificationID, userID string) error {
	return s.store.Notifications().Delete(ctx, notificationID, userID)
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID string) error {
	return s.store.Notifications().DeleteAll(ctx, userID)
}
