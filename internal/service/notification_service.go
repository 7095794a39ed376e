package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type NotificationService struct {
	notifications NotificationRepository
	recentLimit   int
}

// recentLimit <= 0 — ListRecent без ограничения.
func NewNotificationService(notifications NotificationRepository, recentLimit int) *NotificationService {
	return &NotificationService{notifications: notifications, recentLimit: recentLimit}
}

func (s *NotificationService) Create(ctx context.Context, receiverID, typ, message string) (domain.Notification, error) {
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return domain.Notification{}, domain.ErrMissingReceiver
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.Notification{}, domain.ErrEmptyMessage
	}
	if typ = strings.TrimSpace(typ); typ == "" {
		typ = domain.NotificationInfo
	}

	n, err := s.notifications.Create(ctx, domain.Notification{
		ReceiverID: receiverID,
		Type:       typ,
		Message:    message,
	})
	if err != nil {
		return domain.Notification{}, fmt.Errorf("notifications.Create: %w", err)
	}
	return n, nil
}

// ListRecent: все уведомления, новые первыми.
func (s *NotificationService) ListRecent(ctx context.Context) ([]domain.Notification, error) {
	return s.notifications.ListRecent(ctx, s.recentLimit)
}

func (s *NotificationService) ListForReceiver(ctx context.Context, receiverID string, limit int) ([]domain.Notification, error) {
	if receiverID == "" {
		return nil, domain.ErrMissingReceiver
	}
	return s.notifications.ListForReceiver(ctx, receiverID, limit)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id string) (domain.Notification, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Notification{}, domain.ErrNotificationNotFound
	}
	return s.notifications.MarkAsRead(ctx, id)
}
