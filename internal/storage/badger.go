package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"cozy-chat/internal/models"
)

const (
	roomKeyPrefix = "metadata:room:"
	activeKey     = "metadata:active"
	seqKey        = "metadata:seq"
)

// roomRecord is the stored form of a room; messages live under their own keys.
type roomRecord struct {
	ID        string
	Name      string
	Preview   string
	CreatedAt int64
	Seq       uint64
}

type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	return open(badger.DefaultOptions(dbPath))
}

// NewInMemoryBadgerStore opens a store that keeps nothing on disk.
func NewInMemoryBadgerStore() (*BadgerStore, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*BadgerStore, error) {
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func roomKey(roomID string) []byte {
	return []byte(roomKeyPrefix + roomID)
}

func messagePrefix(roomID string) []byte {
	return []byte(fmt.Sprintf("room:%s:msg:", roomID))
}

func messageKey(roomID, messageID string) []byte {
	return append(messagePrefix(roomID), messageID...)
}

func (s *BadgerStore) SaveRoom(ctx context.Context, room models.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSeq(txn)
		if err != nil {
			return fmt.Errorf("failed to allocate room sequence: %w", err)
		}

		record, err := json.Marshal(roomRecord{
			ID:        room.ID,
			Name:      room.Name,
			Preview:   room.Preview,
			CreatedAt: room.CreatedAt.UnixNano(),
			Seq:       seq,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal room: %w", err)
		}

		if err := txn.Set(roomKey(room.ID), record); err != nil {
			return err
		}
		for _, msg := range room.Messages {
			data, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("failed to marshal message: %w", err)
			}
			if err := txn.Set(messageKey(room.ID, msg.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// nextSeq bumps the room counter so rooms reload in the order they were saved.
func nextSeq(txn *badger.Txn) (uint64, error) {
	var seq uint64
	item, err := txn.Get([]byte(seqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		if err := item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence value")
			}
			seq = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return seq, txn.Set([]byte(seqKey), buf)
}

func (s *BadgerStore) AppendMessage(ctx context.Context, msg models.Message, preview string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(msg.RoomID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("room %s not found", msg.RoomID)
			}
			return err
		}

		var record roomRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return fmt.Errorf("failed to read room: %w", err)
		}

		record.Preview = preview
		updated, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal room: %w", err)
		}
		if err := txn.Set(roomKey(msg.RoomID), updated); err != nil {
			return err
		}

		return txn.Set(messageKey(msg.RoomID, msg.ID), data)
	})
}

func (s *BadgerStore) DeleteRoom(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		// Delete room metadata
		if err := txn.Delete(roomKey(roomID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to delete room metadata: %w", err)
		}

		// Delete all messages for this room
		prefix := messagePrefix(roomID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to delete message: %w", err)
			}
		}

		return nil
	})
}

func (s *BadgerStore) SetActiveRoom(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(activeKey), []byte(roomID))
	})
}

func (s *BadgerStore) LoadSession(ctx context.Context) ([]models.Room, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	var records []roomRecord
	var activeID string

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(roomKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record roomRecord
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}

		item, err := txn.Get([]byte(activeKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			activeID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to load rooms: %w", err)
	}

	// Sort in the order rooms were created
	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	rooms := make([]models.Room, 0, len(records))
	for _, record := range records {
		messages, err := s.getMessages(record.ID)
		if err != nil {
			return nil, "", err
		}
		rooms = append(rooms, models.Room{
			ID:        record.ID,
			Name:      record.Name,
			Preview:   record.Preview,
			CreatedAt: unixNanoTime(record.CreatedAt),
			Messages:  messages,
		})
	}

	return rooms, activeID, nil
}

// getMessages returns a room's messages. Keys end in ULIDs, so iteration
// order is creation order.
func (s *BadgerStore) getMessages(roomID string) ([]models.Message, error) {
	var messages []models.Message
	prefix := messagePrefix(roomID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg models.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	return messages, nil
}

func unixNanoTime(n int64) time.Time {
	return time.Unix(0, n)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
