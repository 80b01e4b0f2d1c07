package models

import (
	"time"
)

type Room struct {
	ID        string
	Name      string
	Messages  []Message
	Preview   string
	CreatedAt time.Time
}

// LastMessage returns the most recent message and false when the room is empty.
func (r Room) LastMessage() (Message, bool) {
	if len(r.Messages) == 0 {
		return Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}

// Clone returns a copy whose message slice does not alias the original.
func (r Room) Clone() Room {
	c := r
	c.Messages = make([]Message, len(r.Messages))
	copy(c.Messages, r.Messages)
	return c
}
