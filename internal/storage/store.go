package storage

import (
	"context"

	"cozy-chat/internal/models"
)

// SessionStore persists rooms, their messages and the active room id.
type SessionStore interface {
	// SaveRoom stores room metadata and every message it currently holds
	SaveRoom(ctx context.Context, room models.Room) error

	// AppendMessage stores one message and refreshes the room preview
	AppendMessage(ctx context.Context, msg models.Message, preview string) error

	// DeleteRoom deletes a room and all its messages
	DeleteRoom(ctx context.Context, roomID string) error

	// SetActiveRoom records which room is active
	SetActiveRoom(ctx context.Context, roomID string) error

	// LoadSession returns rooms in creation order, each with its messages in
	// id order, plus the recorded active room id
	LoadSession(ctx context.Context) ([]models.Room, string, error)

	// Close closes the database connection
	Close() error
}
