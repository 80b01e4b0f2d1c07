package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a room's history. Messages are never edited once
// appended to a room.
type Message struct {
	ID          string
	RoomID      string
	Role        string
	Content     string
	Image       string // opaque handle owned by the view layer
	Timestamp   time.Time
	DisplayTime string
}

func NewMessage(id, roomID, role, content, image string, timestamp time.Time, layout string) Message {
	return Message{
		ID:          id,
		RoomID:      roomID,
		Role:        role,
		Content:     content,
		Image:       image,
		Timestamp:   timestamp,
		DisplayTime: timestamp.Format(layout),
	}
}

func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

func (m Message) HasImage() bool {
	return m.Image != ""
}
