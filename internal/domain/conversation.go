package domain

import "time"

type Conversation struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"roomId"`
	Participants []string  `json:"participants"`
	LastMessage  string    `json:"lastMessage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AddParticipants дописывает отсутствующие id, сохраняя порядок.
// Возвращает true, если список изменился.
func (c *Conversation) AddParticipants(ids ...string) bool {
	changed := false
	for _, id := range ids {
		if id == "" || c.HasParticipant(id) {
			continue
		}
		c.Participants = append(c.Participants, id)
		changed = true
	}
	return changed
}

func (c *Conversation) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// ConversationView: переписка с участниками, разрешёнными в отображаемые identity.
type ConversationView struct {
	ID           string     `json:"id"`
	RoomID       string     `json:"roomId"`
	Participants []Identity `json:"participants"`
	LastMessage  string     `json:"lastMessage"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
