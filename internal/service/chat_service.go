package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

const DefaultMaxMessageLength = 4000

type ChatService struct {
	messages      MessageRepository
	conversations ConversationRepository
	maxLen        int
}

func NewChatService(messages MessageRepository, conversations ConversationRepository, maxLen int) *ChatService {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLength
	}
	return &ChatService{
		messages:      messages,
		conversations: conversations,
		maxLen:        maxLen,
	}
}

type SendInput struct {
	SenderID   domain.Party
	ReceiverID domain.Party
	RoomID     string
	Text       string
}

type SendResult struct {
	Message      domain.Message
	Conversation domain.Conversation
}

// Send сохраняет сообщение и обновляет переписку пары.
// Один и тот же путь для сокета и REST.
func (s *ChatService) Send(ctx context.Context, in SendInput) (SendResult, error) {
	if in.SenderID.IsZero() {
		return SendResult{}, domain.ErrMissingSender
	}
	if in.ReceiverID.IsZero() {
		return SendResult{}, domain.ErrMissingReceiver
	}
	roomID := strings.TrimSpace(in.RoomID)
	if roomID == "" {
		return SendResult{}, domain.ErrMissingRoom
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return SendResult{}, domain.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > s.maxLen {
		return SendResult{}, domain.ErrTextTooLong
	}

	msg, err := s.messages.Append(ctx, domain.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		RoomID:     roomID,
		Text:       text,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("messages.Append: %w", err)
	}

	participants := []string{in.SenderID.String()}
	if in.ReceiverID != in.SenderID {
		participants = append(participants, in.ReceiverID.String())
	}
	conv, err := s.conversations.UpsertForMessage(ctx, domain.RoomIDFor(in.SenderID, in.ReceiverID), participants, text)
	if err != nil {
		return SendResult{}, fmt.Errorf("conversations.UpsertForMessage: %w", err)
	}

	return SendResult{Message: msg, Conversation: conv}, nil
}

// History: вся история комнаты по возрастанию createdAt.
func (s *ChatService) History(ctx context.Context, roomID string) ([]domain.Message, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, domain.ErrMissingRoom
	}
	return s.messages.History(ctx, roomID)
}

func (s *ChatService) HistoryPage(ctx context.Context, roomID, after string, limit int) ([]domain.Message, string, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, "", domain.ErrMissingRoom
	}
	return s.messages.HistoryPage(ctx, roomID, after, limit)
}

func (s *ChatService) MarkRead(ctx context.Context, roomID, receiverID string) (int64, error) {
	if strings.TrimSpace(roomID) == "" {
		return 0, domain.ErrMissingRoom
	}
	return s.messages.MarkRead(ctx, roomID, receiverID)
}

// UnreadCount: непрочитанные сообщения, адресованные пользователю.
func (s *ChatService) UnreadCount(ctx context.Context, receiverID string) (int64, error) {
	if receiverID == "" {
		return 0, domain.ErrMissingReceiver
	}
	return s.messages.UnreadCount(ctx, receiverID)
}
