package service

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Хранилища реализуются в internal/postgres и internal/sqlite.

type MessageRepository interface {
	Append(ctx context.Context, m domain.Message) (domain.Message, error)
	History(ctx context.Context, roomID string) ([]domain.Message, error)
	HistoryPage(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error)
	MarkRead(ctx context.Context, roomID, receiverID string) (int64, error)
	UnreadCount(ctx context.Context, receiverID string) (int64, error)
}

type ConversationRepository interface {
	// UpsertForMessage атомарно создаёт переписку или дописывает участников и lastMessage.
	UpsertForMessage(ctx context.Context, roomID string, participants []string, lastMessage string) (domain.Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Notification, error)
	ListForReceiver(ctx context.Context, receiverID string, limit int) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id string) (domain.Notification, error)
}

// IdentityDirectory: справочники users и employees (только чтение).
type IdentityDirectory interface {
	FindUser(ctx context.Context, id string) (domain.Identity, error)
	FindEmployee(ctx context.Context, id string) (domain.Identity, error)
}

// Store: всё хранилище целиком; так его отдают postgres.Store и sqlite.Store.
type Store interface {
	Messages() MessageRepository
	Conversations() ConversationRepository
	Notifications() NotificationRepository
	Identities() IdentityDirectory
	Ping(ctx context.Context) error
	Close()
}
