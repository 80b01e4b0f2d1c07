package storage

import (
	"context"
	"time"

	"cozy-chat/internal/models"
)

const journalTimeout = 5 * time.Second

// Journal records store mutations into a SessionStore.
type Journal struct {
	store SessionStore
}

func NewJournal(store SessionStore) *Journal {
	return &Journal{store: store}
}

func (j *Journal) RoomCreated(room models.Room) error {
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	return j.store.SaveRoom(ctx, room)
}

func (j *Journal) RoomDeleted(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	return j.store.DeleteRoom(ctx, id)
}

func (j *Journal) MessageAppended(msg models.Message, preview string) error {
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	return j.store.AppendMessage(ctx, msg, preview)
}

func (j *Journal) ActiveRoomChanged(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	return j.store.SetActiveRoom(ctx, id)
}
