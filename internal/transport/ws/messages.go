package ws

import (
	"encoding/json"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// События от клиента
const (
	EventRegister         = "register"
	EventJoinRoom         = "joinRoom"
	EventLeaveRoom        = "leaveRoom"
	EventGetNotifications = "getNotifications"
	EventChatMessage      = "chatMessage"
	EventSendNotification = "sendNotification"
	EventMarkAsRead       = "markAsRead"
)

// События от сервера
const (
	EventLoadNotifications   = "loadNotifications"
	EventNewMessage          = "newMessage"
	EventNotification        = "notification"
	EventNotificationUpdated = "notificationUpdated"
	EventError               = "error"
	EventAck                 = "ack"
)

// Message: исходящий кадр. Ack заполняется только в ответах на запрос с ack.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	Ack   *int64 `json:"ack,omitempty"`
}

// inbound: входящий кадр; data разбирается обработчиком события.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int64          `json:"ack,omitempty"`
}

type ChatMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	RoomID     string `json:"roomId"`
	Text       string `json:"text"`
}

// NewMessagePayload: исходный payload плюс _id и createdAt сохранённого сообщения.
type NewMessagePayload struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	RoomID     string    `json:"roomId"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newMessagePayload(m domain.Message) NewMessagePayload {
	return NewMessagePayload{
		ID:         m.ID,
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		RoomID:     m.RoomID,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}

type SendNotificationPayload struct {
	ReceiverID string `json:"receiverId"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MarkAsReadResult: тело ack на markAsRead.
type MarkAsReadResult struct {
	Status       string               `json:"status"`
	Notification *domain.Notification `json:"notification,omitempty"`
	Error        string               `json:"error,omitempty"`
}
