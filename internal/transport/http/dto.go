package http

import "github.com/cwrk-planet/chat-service/internal/domain"

type SendMessageRequest struct {
	Text       string `json:"text"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

type SendMessageResponse struct {
	Message      domain.Message      `json:"message"`
	Conversation domain.Conversation `json:"conversation"`
}

type HistoryResponse struct {
	Messages   []domain.Message `json:"messages"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type ConversationsResponse struct {
	Conversations []domain.ConversationView `json:"conversations"`
}

type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

type NotificationResponse struct {
	Notification domain.Notification `json:"notification"`
}
