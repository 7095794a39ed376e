package domain

import "time"

const (
	NotificationInfo    = "info"
	NotificationMessage = "message"
)

type Notification struct {
	ID         string    `json:"id"`
	ReceiverID string    `json:"receiverId"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}
