package domain

import "time"

type Message struct {
	ID         string    `json:"id"`
	SenderID   Party     `json:"senderId"`
	ReceiverID Party     `json:"receiverId"`
	RoomID     string    `json:"roomId"`
	Text       string    `json:"text"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}
